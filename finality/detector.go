package finality

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/ethereum/go-ethereum/log"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/dagstore"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/pos"
)

// Detector finalizes batches of vertices once they are supported by a quorum.
// It isn't safe for concurrent use, the engine serializes the calls.
type Detector[C any] struct {
	store *dagstore.Store[C]
	ctx   consensus.Context

	Log log.Logger
}

// New makes the detector over the store. The finality state is restored from the store.
func New[C any](store *dagstore.Store[C], ctx consensus.Context) *Detector[C] {
	return &Detector[C]{
		store: store,
		ctx:   ctx,
		Log:   log.New("module", "finality"),
	}
}

func vertexComparator(a, b interface{}) int {
	return a.(hash.Vertex).Cmp(b.(hash.Vertex))
}

// ProcessVertex must be called after each successful insertion.
// Only the not finalized ancestors of the vertex may get more support, so only they are considered.
// Returns the finalized batch, if any.
func (d *Detector[C]) ProcessVertex(id hash.Vertex) (*consensus.Batch[C], error) {
	candidates := d.pendingAncestors(hash.Vertices{id})
	if candidates.Empty() {
		return nil, nil
	}

	supporters := d.supporters()
	var decided hash.Vertices
	for it := candidates.Iterator(); it.Next(); {
		c := it.Value().(hash.Vertex)
		if d.support(c, supporters) >= d.ctx.Quorum() {
			decided.Add(c)
		}
	}
	if len(decided) == 0 {
		return nil, nil
	}

	return d.finalize(d.pendingAncestors(decided))
}

// pendingAncestors returns the not finalized vertices among the roots and their ancestors.
func (d *Detector[C]) pendingAncestors(roots hash.Vertices) *treeset.Set {
	res := treeset.NewWith(vertexComparator)

	var stack hash.VerticesStack
	stack.PushAll(roots)
	for next := stack.Pop(); next != nil; next = stack.Pop() {
		id := *next
		if res.Contains(id) || d.store.IsFinalized(id) {
			continue
		}
		res.Add(id)
		h, ok := d.store.Header(id)
		if !ok {
			continue
		}
		for _, p := range h.Panorama {
			stack.Push(p)
		}
	}
	return res
}

// supporters returns the latest vertices of the validators whose support counts.
func (d *Detector[C]) supporters() []*dagstore.Header {
	tips := d.store.Tips()
	res := make([]*dagstore.Header, 0, len(tips))
	for _, v := range d.ctx.Validators().SortedIDs() {
		id, ok := tips[v]
		if !ok || d.ctx.Excluded(v, d.store.IsCheater(v)) {
			continue
		}
		if h, ok := d.store.Header(id); ok {
			res = append(res, h)
		}
	}
	return res
}

// support of c is the weight of validators whose latest vertex observes a vertex of c's creator,
// which has c as a self-ancestor-or-self.
func (d *Detector[C]) support(c hash.Vertex, supporters []*dagstore.Header) pos.Weight {
	h, ok := d.store.Header(c)
	if !ok {
		return 0
	}
	counter := d.ctx.Validators().NewCounter(d.ctx.Quorum())
	for _, l := range supporters {
		o := l.ID
		if l.Creator != h.Creator {
			if o, ok = l.Panorama.Get(h.Creator); !ok {
				continue
			}
		}
		if anc, ok := d.store.SelfAncestorAt(o, h.Seq); ok && anc == c {
			counter.Count(l.Creator)
		}
	}
	return counter.Sum()
}
