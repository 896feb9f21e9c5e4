package engine

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/dagstore"
	"github.com/Fantom-foundation/vertexdag/finality"
	"github.com/Fantom-foundation/vertexdag/gossip/dagordering"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
	"github.com/Fantom-foundation/vertexdag/kvdb"
	"github.com/Fantom-foundation/vertexdag/vertexcheck"
	"github.com/Fantom-foundation/vertexdag/vertexcheck/panoramacheck"
)

// ErrMalformedVertex is returned for vertex bytes which can't be decoded.
var ErrMalformedVertex = errors.New("malformed vertex")

// Callbacks to the transport.
type Callbacks struct {
	// RequestMissing is called with the vertices a pending vertex waits for. Optional.
	RequestMissing func(peer string, ids hash.Vertices)
	// Released is called for a buffered vertex which is dropped. Optional.
	// err matches vertexcheck.ErrInvalidVertex if the peer misbehaves.
	Released func(id hash.Vertex, peer string, err error)
}

// Engine is the protocol state of a validator: it orders, validates, stores and finalizes vertices.
// It's safe for concurrent use, the mutating calls are serialized.
type Engine[C any] struct {
	mu sync.Mutex

	ctx      consensus.Context
	store    *dagstore.Store[C]
	finality *finality.Detector[C]
	buffer   *dagordering.Buffer[C]
	callback Callbacks

	// inserted vertices which weren't processed by the finality yet
	unfinalized hash.Vertices

	Log log.Logger
}

// New opens the engine over the DB. The previous state is restored from the DB.
func New[C any](db kvdb.Store, ctx consensus.Context, cfg Config, callback Callbacks) (*Engine[C], error) {
	store, err := dagstore.New[C](db, ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	e := &Engine[C]{
		ctx:      ctx,
		store:    store,
		finality: finality.New(store, ctx),
		callback: callback,
		Log:      log.New("module", "engine"),
	}
	e.buffer = dagordering.New(cfg.Buffer, dagordering.Callback[C]{
		Process:  e.process,
		Released: e.released,
		Exists:   store.HasVertex,
	})
	return e, nil
}

// SubmitVertex inserts the vertex or buffers it until its panorama is complete.
// Returned errors matching vertexcheck.ErrInvalidVertex mean the peer misbehaves,
// errors matching dagstore.ErrStorageFault mean the insertion may be retried.
func (e *Engine[C]) SubmitVertex(v *dag.BaseVertex[C], peer string) (dagordering.Result, error) {
	if e.store.HasVertex(v.ID()) {
		duplicateMeter.Mark(1)
		return dagordering.Result{Outcome: dagordering.Duplicate}, nil
	}
	if err := e.store.Checkers().ValidateStateless(v); err != nil {
		e.violation(v, peer, err)
		return dagordering.Result{}, err
	}
	return e.SubmitChecked(v, peer)
}

// SubmitRaw decodes the vertex and submits it.
func (e *Engine[C]) SubmitRaw(raw []byte, peer string) (dagordering.Result, error) {
	v, err := dag.UnmarshalVertex[C](raw)
	if err != nil {
		err = vertexcheck.Invalid(hash.ZeroVertex, errors.Join(ErrMalformedVertex, err))
		invalidMeter.Mark(1)
		e.Log.Warn("Malformed vertex", "peer", peer, "err", err)
		return dagordering.Result{}, err
	}
	return e.SubmitVertex(v, peer)
}

// SubmitChecked is SubmitVertex for a vertex which passed the stateless validation already.
func (e *Engine[C]) SubmitChecked(v *dag.BaseVertex[C], peer string) (dagordering.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.finalizeLeft(); err != nil {
		return dagordering.Result{}, err
	}

	res, err := e.buffer.Submit(v, peer)
	bufferedGauge.Update(int64(e.buffer.Len()))
	if err != nil {
		return res, err
	}
	switch res.Outcome {
	case dagordering.Pending:
		pendingMeter.Mark(1)
		if e.callback.RequestMissing != nil {
			e.callback.RequestMissing(peer, res.Missing)
		}
	case dagordering.Duplicate:
		duplicateMeter.Mark(1)
	}
	return res, nil
}

// Retry continues the processing interrupted by a storage fault.
func (e *Engine[C]) Retry() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.finalizeLeft(); err != nil {
		return err
	}
	return e.buffer.Retry()
}

// process is the insertion path of a complete vertex.
func (e *Engine[C]) process(v *dag.BaseVertex[C]) error {
	id, err := e.store.AddVertex(v)
	if err != nil {
		var conflict *panoramacheck.ConflictError
		if errors.As(err, &conflict) {
			equivocationMeter.Mark(1)
			e.ctx.OnEquivocation(conflict.Evidence)
		}
		if vertexcheck.IsBan(err) {
			e.violation(v, "", err)
		}
		return err
	}
	if id == nil {
		duplicateMeter.Mark(1)
		return nil
	}
	insertedMeter.Mark(1)

	if eq := e.store.LastEquivocation(); eq != nil {
		equivocationMeter.Mark(1)
		e.ctx.OnEquivocation(eq)
	}

	e.unfinalized.Add(*id)
	return e.finalizeLeft()
}

// finalizeLeft runs the finality for the inserted vertices, including the ones left after a storage fault.
func (e *Engine[C]) finalizeLeft() error {
	for len(e.unfinalized) != 0 {
		b, err := e.finality.ProcessVertex(e.unfinalized[0])
		if err != nil {
			e.Log.Error("Failed to process finality", "id", e.unfinalized[0], "err", err)
			return err
		}
		e.unfinalized = e.unfinalized[1:]
		if b != nil {
			batchesMeter.Mark(1)
		}
	}
	e.unfinalized = nil
	return nil
}

func (e *Engine[C]) released(v *dag.BaseVertex[C], peer string, err error) {
	if errors.Is(err, vertexcheck.ErrSpilledVertex) {
		e.Log.Debug("Vertex is spilled", "id", v.ID(), "peer", peer)
	}
	if e.callback.Released != nil {
		e.callback.Released(v.ID(), peer, err)
	}
}

func (e *Engine[C]) violation(v dag.Vertex, peer string, err error) {
	invalidMeter.Mark(1)
	e.Log.Warn("Protocol violation", "id", v.ID(), "creator", v.Creator(), "seq", v.Seq(), "peer", peer, "err", err)
}

// Poll passes the undelivered finalized batches to consume, in order, until it returns false.
func (e *Engine[C]) Poll(consume func(b *consensus.Batch[C]) bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.finality.Poll(consume)
}

// GetVertex returns the stored vertex or nil. It doesn't wait for the insertions.
func (e *Engine[C]) GetVertex(id hash.Vertex) (*dag.BaseVertex[C], error) {
	return e.store.GetVertex(id)
}

// HighestLamport returns the highest Lamport time of the stored vertices.
func (e *Engine[C]) HighestLamport() idx.Lamport {
	highest := idx.Lamport(0)
	for _, id := range e.store.Tips() {
		highest = idx.MaxLamport(highest, id.Lamport())
	}
	return highest
}

// IsBuffered returns true if the vertex waits for its panorama.
func (e *Engine[C]) IsBuffered(id hash.Vertex) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.buffer.IsBuffered(id)
}

// Missing returns the vertices the buffered vertices wait for.
func (e *Engine[C]) Missing() hash.Vertices {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.buffer.Missing()
}

// Store returns the underlying DAG store.
func (e *Engine[C]) Store() *dagstore.Store[C] {
	return e.store
}

// Finality returns the finality detector.
func (e *Engine[C]) Finality() *finality.Detector[C] {
	return e.finality
}

// Close leaves the underlying DB.
func (e *Engine[C]) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buffer.Clear()
	return e.store.Close()
}
