package dagstore

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

const stateKey = "d"

// State is the decided state of the finality.
type State struct {
	// LastBatch is the index of the last finalized batch, 0 if nothing is finalized.
	LastBatch idx.Batch
	// Delivered is the index of the last batch consumed by the execution.
	Delivered idx.Batch
}

// GetState returns the decided state.
func (s *Store[C]) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// SetDelivered saves the index of the last consumed batch.
func (s *Store[C]) SetDelivered(n idx.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > s.state.LastBatch {
		return errors.Wrapf(ErrBatchOutOfOrder, "batch %d isn't finalized", n)
	}
	st := s.state
	st.Delivered = n
	buf, err := rlp.EncodeToBytes(&st)
	if err != nil {
		return err
	}
	if err := s.table.State.Put([]byte(stateKey), buf); err != nil {
		return storageFault(err)
	}
	s.state = st
	return nil
}

// CommitBatch writes the batch, the finalized marks of its vertices and the new state atomically.
func (s *Store[C]) CommitBatch(b *consensus.Batch[C]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.Index != s.state.LastBatch+1 {
		return errors.Wrapf(ErrBatchOutOfOrder, "got %d, expected %d", b.Index, s.state.LastBatch+1)
	}
	for _, id := range b.Vertices {
		if _, ok := s.headers[id]; !ok {
			return errors.Errorf("finalized vertex %s isn't stored", id.FullID())
		}
	}

	st := s.state
	st.LastBatch = b.Index

	buf, err := rlp.EncodeToBytes(b)
	if err != nil {
		return err
	}
	stateBuf, err := rlp.EncodeToBytes(&st)
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	if err := s.table.Batches.WrapBatch(batch).Put(b.Index.Bytes(), buf); err != nil {
		return storageFault(err)
	}
	marks := s.table.Finalized.WrapBatch(batch)
	for _, id := range b.Vertices {
		if err := marks.Put(id.Bytes(), b.Index.Bytes()); err != nil {
			return storageFault(err)
		}
	}
	if err := s.table.State.WrapBatch(batch).Put([]byte(stateKey), stateBuf); err != nil {
		return storageFault(err)
	}
	if err := batch.Write(); err != nil {
		s.Log.Error("Failed to store batch", "index", b.Index, "err", err)
		return storageFault(err)
	}

	for _, id := range b.Vertices {
		s.markFinalized(id, b.Index)
	}
	s.state = st
	return nil
}

func (s *Store[C]) markFinalized(id hash.Vertex, n idx.Batch) {
	s.finalized[id] = n
	h := s.headers[id]
	if last, ok := s.lastFinalized[h.Creator]; !ok || s.headers[last].Seq < h.Seq {
		s.lastFinalized[h.Creator] = id
	}
}

// GetBatch returns the finalized batch or nil if it's unknown.
func (s *Store[C]) GetBatch(n idx.Batch) (*consensus.Batch[C], error) {
	raw, err := s.table.Batches.Get(n.Bytes())
	if err != nil {
		return nil, storageFault(err)
	}
	if raw == nil {
		return nil, nil
	}
	b := &consensus.Batch[C]{}
	if err := rlp.DecodeBytes(raw, b); err != nil {
		return nil, storageFault(errors.Wrapf(err, "failed to decode batch %d", n))
	}
	return b, nil
}

// IsFinalized returns true if the vertex is finalized.
func (s *Store[C]) IsFinalized(id hash.Vertex) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.finalized[id]
	return ok
}

// FinalizedIn returns the index of the batch which finalized the vertex.
func (s *Store[C]) FinalizedIn(id hash.Vertex) (idx.Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.finalized[id]
	return n, ok
}

// LastFinalized returns the finalized vertex of the validator with the highest seq.
func (s *Store[C]) LastFinalized(validator idx.ValidatorID) (hash.Vertex, idx.Seq, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return chainReader[C]{s}.LastFinalized(validator)
}
