package dagordering

import (
	"errors"

	"github.com/gammazero/deque"

	"github.com/Fantom-foundation/vertexdag/dagstore"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/utils/simplewlru"
	"github.com/Fantom-foundation/vertexdag/vertexcheck"
)

// Outcome of the submission.
type Outcome int

const (
	// Rejected means the vertex isn't stored nor buffered, the error tells why.
	Rejected Outcome = iota
	// Inserted means the vertex is stored.
	Inserted
	// Pending means the vertex waits for its missing panorama entries.
	Pending
	// Duplicate means the vertex is stored already.
	Duplicate
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Inserted:
		return "inserted"
	case Pending:
		return "pending"
	case Duplicate:
		return "duplicate"
	}
	return "unknown"
}

// Result of the submission.
type Result struct {
	Outcome Outcome
	// Missing are the panorama entries to request, if the vertex is pending.
	Missing hash.Vertices
}

type (
	// pending is a buffered vertex with the data for ordering purpose.
	pending[C any] struct {
		v       *dag.BaseVertex[C]
		peer    string
		missing hash.VerticesSet
	}

	// Callback is a set of Buffer's args.
	Callback[C any] struct {
		// Process inserts a complete vertex.
		// Errors matching dagstore.ErrStorageFault stop the cascade, the vertex is retried later.
		Process func(v *dag.BaseVertex[C]) error
		// Released is called for a buffered vertex which is dropped: rejected, spilled
		// or stored already by another submission (vertexcheck.ErrAlreadyConnected).
		Released func(v *dag.BaseVertex[C], peer string, err error)
		// Exists returns true if vertex is stored.
		Exists func(id hash.Vertex) bool
	}
)

// Buffer holds the vertices which refer unknown vertices until the panorama is complete.
// Not safe for concurrent use.
type Buffer[C any] struct {
	incompletes *simplewlru.Cache[hash.Vertex, *pending[C]]
	// missing id -> ids of buffered vertices waiting for it
	waiting map[hash.Vertex]hash.VerticesSet
	// complete vertices, in insertion order
	ready *deque.Deque[*pending[C]]

	callback Callback[C]
}

// New makes the buffer.
func New[C any](cfg Config, callback Callback[C]) *Buffer[C] {
	b := &Buffer[C]{
		waiting:  make(map[hash.Vertex]hash.VerticesSet),
		ready:    new(deque.Deque[*pending[C]]),
		callback: callback,
	}
	b.incompletes, _ = simplewlru.NewWithEvict[hash.Vertex, *pending[C]](uint(cfg.Limit.Size), int(cfg.Limit.Num), b.spill)
	return b
}

// Submit inserts the vertex if its panorama is complete, or buffers it.
// An insertion may complete some buffered vertices, they are inserted as well.
// Buffered vertices which fail are passed to Released and don't fail the call.
func (b *Buffer[C]) Submit(v *dag.BaseVertex[C], peer string) (Result, error) {
	id := v.ID()
	if b.callback.Exists(id) {
		// the waiters may be left behind by a fault after the vertex was stored
		b.onInserted(id)
		return Result{Outcome: Duplicate}, b.drain()
	}

	missing := hash.VerticesSet{}
	for _, p := range v.Panorama().IDs() {
		if !b.callback.Exists(p) {
			missing.Add(p)
		}
	}
	if len(missing) != 0 {
		b.park(&pending[C]{
			v:       v,
			peer:    peer,
			missing: missing,
		})
		return Result{Outcome: Pending, Missing: missing.Slice()}, nil
	}

	if old, ok := b.incompletes.Peek(id); ok {
		b.unregister(old)
		b.incompletes.Remove(id)
	}
	if err := b.callback.Process(v); err != nil {
		if b.callback.Exists(id) {
			// stored, the fault happened after the commit
			b.onInserted(id)
			return Result{Outcome: Inserted}, err
		}
		return Result{}, err
	}
	b.onInserted(id)

	return Result{Outcome: Inserted}, b.drain()
}

// Retry inserts the complete vertices left after a storage fault.
func (b *Buffer[C]) Retry() error {
	return b.drain()
}

// park buffers the vertex. A vertex is buffered at most once.
func (b *Buffer[C]) park(e *pending[C]) {
	id := e.v.ID()
	if old, ok := b.incompletes.Peek(id); ok {
		b.unregister(old)
	}
	for m := range e.missing {
		set, ok := b.waiting[m]
		if !ok {
			set = hash.VerticesSet{}
			b.waiting[m] = set
		}
		set.Add(id)
	}
	b.incompletes.Add(id, e, uint(e.v.Size()))
}

func (b *Buffer[C]) unregister(e *pending[C]) {
	id := e.v.ID()
	for m := range e.missing {
		set := b.waiting[m]
		set.Erase(id)
		if len(set) == 0 {
			delete(b.waiting, m)
		}
	}
}

// spill is called by the LRU on overflow.
func (b *Buffer[C]) spill(id hash.Vertex, e *pending[C]) {
	b.unregister(e)
	b.release(e, vertexcheck.ErrSpilledVertex)
}

func (b *Buffer[C]) release(e *pending[C], err error) {
	if b.callback.Released != nil {
		b.callback.Released(e.v, e.peer, err)
	}
}

// onInserted moves the vertices which were waiting only for id into the ready queue.
func (b *Buffer[C]) onInserted(id hash.Vertex) {
	waiters, ok := b.waiting[id]
	if !ok {
		return
	}
	delete(b.waiting, id)
	for _, w := range waiters.Slice() {
		e, ok := b.incompletes.Peek(w)
		if !ok {
			continue
		}
		e.missing.Erase(id)
		if len(e.missing) == 0 {
			b.incompletes.Remove(w)
			b.ready.PushBack(e)
		}
	}
}

// drain inserts the ready vertices iteratively.
func (b *Buffer[C]) drain() error {
	for b.ready.Len() != 0 {
		e := b.ready.Front()
		id := e.v.ID()
		if b.callback.Exists(id) {
			b.ready.PopFront()
			b.release(e, vertexcheck.ErrAlreadyConnected)
			b.onInserted(id)
			continue
		}
		err := b.callback.Process(e.v)
		if errors.Is(err, dagstore.ErrStorageFault) {
			if b.callback.Exists(id) {
				b.ready.PopFront()
				b.onInserted(id)
			}
			return err
		}
		b.ready.PopFront()
		if err != nil {
			b.release(e, err)
			continue
		}
		b.onInserted(id)
	}
	return nil
}

// IsBuffered returns true if the vertex is buffered.
func (b *Buffer[C]) IsBuffered(id hash.Vertex) bool {
	if b.incompletes.Contains(id) {
		return true
	}
	for i := 0; i < b.ready.Len(); i++ {
		if b.ready.At(i).v.ID() == id {
			return true
		}
	}
	return false
}

// Missing returns all the vertices which buffered vertices wait for.
func (b *Buffer[C]) Missing() hash.Vertices {
	ids := make(hash.Vertices, 0, len(b.waiting))
	for id := range b.waiting {
		ids = append(ids, id)
	}
	ids.Sort()
	return ids
}

// Len returns the number of buffered vertices.
func (b *Buffer[C]) Len() int {
	return b.incompletes.Len() + b.ready.Len()
}

// Clear drops all the buffered vertices.
func (b *Buffer[C]) Clear() {
	b.incompletes.Purge()
	b.waiting = make(map[hash.Vertex]hash.VerticesSet)
	b.ready.Clear()
}
