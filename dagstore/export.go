package dagstore

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
)

// Export writes every stored vertex in the insertion order.
// Replaying the output into an empty store rebuilds the same DAG, and the finality of the replayed
// vertices is decided at the same points, so the batches are the same too.
func (s *Store[C]) Export(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it := s.table.Arrivals.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		id := hash.BytesToVertex(it.Value())
		raw, err := s.table.Vertices.Get(id.Bytes())
		if err != nil {
			return storageFault(err)
		}
		if raw == nil {
			return storageFault(errors.Errorf("vertex %s is missing", id.FullID()))
		}
		if err := rlp.Encode(w, raw); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return storageFault(err)
	}
	return nil
}

// Import reads the vertices written by Export and passes them to fn in the written order.
func Import[C any](r io.Reader, fn func(v *dag.BaseVertex[C]) error) error {
	stream := rlp.NewStream(r, 0)
	for {
		raw, err := stream.Bytes()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		v, err := dag.UnmarshalVertex[C](raw)
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}
