package finality

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/dagstore"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

type finalizedPos struct {
	id  hash.Vertex
	seq idx.Seq
}

// finalize makes and commits the batch of the vertices, in id order.
// Vertices conflicting with the finalized chain of their creator are skipped.
func (d *Detector[C]) finalize(vertices *treeset.Set) (*consensus.Batch[C], error) {
	last := make(map[idx.ValidatorID]finalizedPos)
	lastFinalized := func(creator idx.ValidatorID) (finalizedPos, bool) {
		if p, ok := last[creator]; ok {
			return p, true
		}
		id, seq, ok := d.store.LastFinalized(creator)
		return finalizedPos{id, seq}, ok
	}

	batch := &consensus.Batch[C]{
		Index:    d.store.GetState().LastBatch + 1,
		Values:   []C{},
		Cheaters: d.store.Cheaters(),
	}
	for it := vertices.Iterator(); it.Next(); {
		id := it.Value().(hash.Vertex)
		h, _ := d.store.Header(id)
		if lf, ok := lastFinalized(h.Creator); ok && d.conflicts(h, lf) {
			d.Log.Debug("Skipped conflicting vertex", "id", id, "creator", h.Creator, "seq", h.Seq)
			continue
		}

		v, err := d.store.GetVertex(id)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errors.Errorf("vertex %s isn't found", id.FullID())
		}
		batch.Vertices.Add(id)
		batch.Values = append(batch.Values, v.Values()...)
		last[h.Creator] = finalizedPos{id, h.Seq}
	}
	if len(batch.Vertices) == 0 {
		return nil, nil
	}
	batch.Anchor = batch.Vertices[len(batch.Vertices)-1]

	if err := d.store.CommitBatch(batch); err != nil {
		return nil, err
	}
	d.Log.Info("New batch is finalized", "index", batch.Index, "anchor", batch.Anchor,
		"vertices", len(batch.Vertices), "values", len(batch.Values), "cheaters", len(batch.Cheaters))
	return batch, nil
}

// conflicts returns true if h isn't a descendant of the last finalized vertex of its creator.
func (d *Detector[C]) conflicts(h *dagstore.Header, lf finalizedPos) bool {
	if h.Seq <= lf.seq {
		return true
	}
	anc, ok := d.store.SelfAncestorAt(h.ID, lf.seq)
	return !ok || anc != lf.id
}

// IsFinalized returns true if the vertex is finalized.
func (d *Detector[C]) IsFinalized(id hash.Vertex) bool {
	return d.store.IsFinalized(id)
}

// LastBatch returns the last finalized batch or nil.
func (d *Detector[C]) LastBatch() (*consensus.Batch[C], error) {
	n := d.store.GetState().LastBatch
	if n == 0 {
		return nil, nil
	}
	return d.store.GetBatch(n)
}

// Poll passes the undelivered batches to consume, in order, until it returns false.
// Each consumed batch is marked as delivered persistently, so it's never passed again.
func (d *Detector[C]) Poll(consume func(b *consensus.Batch[C]) bool) error {
	st := d.store.GetState()
	for n := st.Delivered + 1; n <= st.LastBatch; n++ {
		b, err := d.store.GetBatch(n)
		if err != nil {
			return err
		}
		if b == nil {
			return errors.Errorf("batch %d isn't found", n)
		}
		if !consume(b) {
			return nil
		}
		if err := d.store.SetDelivered(n); err != nil {
			return err
		}
	}
	return nil
}
