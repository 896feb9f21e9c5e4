package dagstore

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// AddVertex validates and stores the vertex.
// It returns:
//   - the vertex id if the vertex is inserted;
//   - nil, nil if the vertex is stored already;
//   - MissingDependencyError if any panorama entry isn't stored;
//   - an error matching vertexcheck.ErrInvalidVertex if the vertex is rejected;
//   - an error matching ErrStorageFault if the DB fails, nothing is changed then.
//
// A detected equivocation doesn't prevent the insertion, the evidence is returned by LastEquivocation.
func (s *Store[C]) AddVertex(v *dag.BaseVertex[C]) (*hash.Vertex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastEquivocation = nil

	id := v.ID()
	if _, ok := s.headers[id]; ok {
		return nil, nil
	}

	var missing hash.Vertices
	for _, p := range v.Panorama().IDs() {
		if _, ok := s.headers[p]; !ok {
			missing.Add(p)
		}
	}
	if len(missing) != 0 {
		return nil, &MissingDependencyError{
			ID:      id,
			Missing: missing,
		}
	}

	parents := make(dag.Vertices, 0, v.Panorama().Len())
	for _, p := range v.Panorama().IDs() {
		pv, err := s.getVertex(p)
		if err != nil {
			return nil, err
		}
		parents = append(parents, pv)
	}

	eq, err := s.checkers.Validate(v, parents)
	if err != nil {
		return nil, err
	}

	if err := s.commitVertex(v, eq); err != nil {
		s.Log.Error("Failed to store vertex", "id", id, "err", err)
		return nil, storageFault(err)
	}

	s.index(v)
	s.latest[v.Creator()] = id
	if eq != nil {
		if _, ok := s.cheaters[eq.Validator]; !ok {
			s.cheaters[eq.Validator] = eq
		}
		s.lastEquivocation = eq
	}
	s.cache.Add(id, v)

	return &id, nil
}

// commitVertex writes the vertex with all its index entries in one batch.
func (s *Store[C]) commitVertex(v *dag.BaseVertex[C], eq *consensus.Equivocation) error {
	raw, err := v.MarshalBinary()
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	id := v.ID()

	if err := s.table.Vertices.WrapBatch(batch).Put(id.Bytes(), raw); err != nil {
		return err
	}
	pos := binary.BigEndian.AppendUint64(nil, uint64(len(s.headers)))
	if err := s.table.Arrivals.WrapBatch(batch).Put(pos, id.Bytes()); err != nil {
		return err
	}
	if err := s.table.Latest.WrapBatch(batch).Put(v.Creator().Bytes(), id.Bytes()); err != nil {
		return err
	}
	children := s.table.Children.WrapBatch(batch)
	for _, p := range v.Panorama().IDs() {
		if err := children.Put(append(p.Bytes(), id.Bytes()...), []byte{}); err != nil {
			return err
		}
	}
	if eq != nil {
		if _, ok := s.cheaters[eq.Validator]; !ok {
			buf, err := rlp.EncodeToBytes(eq)
			if err != nil {
				return err
			}
			if err := s.table.Cheaters.WrapBatch(batch).Put(eq.Validator.Bytes(), buf); err != nil {
				return err
			}
		}
	}

	return batch.Write()
}

// GetVertex returns the stored vertex or nil if it's unknown.
func (s *Store[C]) GetVertex(id hash.Vertex) (*dag.BaseVertex[C], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.headers[id]; !ok {
		return nil, nil
	}
	return s.getVertex(id)
}

func (s *Store[C]) getVertex(id hash.Vertex) (*dag.BaseVertex[C], error) {
	if v, ok := s.cache.Get(id); ok {
		return v.(*dag.BaseVertex[C]), nil
	}

	raw, err := s.table.Vertices.Get(id.Bytes())
	if err != nil {
		return nil, storageFault(err)
	}
	if raw == nil {
		return nil, storageFault(errors.Errorf("vertex %s isn't found", id.FullID()))
	}
	v, err := dag.UnmarshalVertex[C](raw)
	if err != nil {
		return nil, storageFault(errors.Wrapf(err, "failed to decode vertex %s", id.FullID()))
	}

	s.cache.Add(id, v)
	return v, nil
}

// HasVertex returns true if vertex is stored.
func (s *Store[C]) HasVertex(id hash.Vertex) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.headers[id]
	return ok
}

// Header returns the in-memory part of the stored vertex.
func (s *Store[C]) Header(id hash.Vertex) (*Header, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.headers[id]
	return h, ok
}

// Len returns the number of stored vertices.
func (s *Store[C]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.headers)
}

// Latest returns the last inserted vertex of the validator.
func (s *Store[C]) Latest(validator idx.ValidatorID) (hash.Vertex, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.latest[validator]
	return id, ok
}

// Tips returns the latest vertex of every validator.
func (s *Store[C]) Tips() dag.Panorama {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tips := make(dag.Panorama, len(s.latest))
	for v, id := range s.latest {
		tips[v] = id
	}
	return tips
}

// Children returns the vertices which cite the vertex, in id order.
func (s *Store[C]) Children(id hash.Vertex) (hash.Vertices, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it := s.table.Children.NewIterator(id.Bytes(), nil)
	defer it.Release()

	var res hash.Vertices
	for it.Next() {
		res.Add(hash.BytesToVertex(it.Key()[hash.Length:]))
	}
	if err := it.Error(); err != nil {
		return nil, storageFault(err)
	}
	return res, nil
}

// SlotVertices returns the vertices of the creator at the seq. More than one means an equivocation.
func (s *Store[C]) SlotVertices(creator idx.ValidatorID, seq idx.Seq) hash.Vertices {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return chainReader[C]{s}.SlotVertices(creator, seq)
}

// SelfAncestorAt returns the vertex at the seq in the creator's chain ending with id.
func (s *Store[C]) SelfAncestorAt(id hash.Vertex, seq idx.Seq) (hash.Vertex, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return chainReader[C]{s}.SelfAncestorAt(id, seq)
}

// ForEachVertex iterates the stored vertices in id order, which is a dependency-respecting order.
// Stops if fn returns false.
func (s *Store[C]) ForEachVertex(fn func(v *dag.BaseVertex[C]) bool) error {
	return s.forEachRaw(func(raw []byte) (bool, error) {
		v, err := dag.UnmarshalVertex[C](raw)
		if err != nil {
			return false, err
		}
		return fn(v), nil
	})
}

func (s *Store[C]) forEachRaw(fn func(raw []byte) (bool, error)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it := s.table.Vertices.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		next, err := fn(it.Value())
		if err != nil {
			return err
		}
		if !next {
			return nil
		}
	}
	if err := it.Error(); err != nil {
		return storageFault(err)
	}
	return nil
}

// chainReader reads the indexes without locking, the caller holds the lock.
type chainReader[C any] struct {
	s *Store[C]
}

func (r chainReader[C]) SelfAncestorAt(id hash.Vertex, seq idx.Seq) (hash.Vertex, bool) {
	for {
		h, ok := r.s.headers[id]
		if !ok || h.Seq < seq {
			return hash.ZeroVertex, false
		}
		if h.Seq == seq {
			return id, true
		}
		id, ok = h.SelfParent()
		if !ok {
			return hash.ZeroVertex, false
		}
	}
}

func (r chainReader[C]) SlotVertices(creator idx.ValidatorID, seq idx.Seq) hash.Vertices {
	return r.s.slots[slot{creator, seq}].Copy()
}

func (r chainReader[C]) LastFinalized(validator idx.ValidatorID) (hash.Vertex, idx.Seq, bool) {
	id, ok := r.s.lastFinalized[validator]
	if !ok {
		return hash.ZeroVertex, 0, false
	}
	return id, r.s.headers[id].Seq, true
}
