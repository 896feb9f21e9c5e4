package dagprocessor

import (
	"errors"
	"runtime"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/Fantom-foundation/vertexdag/dagstore"
	"github.com/Fantom-foundation/vertexdag/gossip/dagordering"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
	"github.com/Fantom-foundation/vertexdag/utils/datasemaphore"
	"github.com/Fantom-foundation/vertexdag/utils/workers"
	"github.com/Fantom-foundation/vertexdag/vertexcheck"
)

var (
	ErrBusy = errors.New("failed to acquire vertices semaphore")
	// ErrTooFarInFuture is passed to Dropped for a vertex with too high Lamport time.
	ErrTooFarInFuture = errors.New("vertex is too far in future")
)

// Processor is responsible for processing incoming vertices.
// The stateless checks run in parallel, the insertions are serialized by the engine.
type Processor[C any] struct {
	cfg Config

	quit chan struct{}
	wg   sync.WaitGroup

	callback Callback[C]

	orderedInserter    *workers.Workers
	unorderedInserters *workers.Workers
	checkers           *workers.Workers

	semaphore *datasemaphore.DataSemaphore

	Log log.Logger
}

type VertexCallback[C any] struct {
	// CheckStateless is the part of the validation which doesn't read the DAG.
	CheckStateless func(v dag.Vertex) error
	// Submit passes the checked vertex to the engine.
	Submit func(v *dag.BaseVertex[C], peer string) (dagordering.Result, error)
	// Dropped is called for a vertex which isn't submitted. Optional.
	Dropped func(v *dag.BaseVertex[C], peer string, err error)
}

type Callback[C any] struct {
	Vertex VertexCallback[C]
	// PeerMisbehaviour is a callback type for dropping a peer detected as malicious.
	PeerMisbehaviour func(peer string, err error) bool
	// HighestLamport of the stored vertices. Optional.
	HighestLamport func() idx.Lamport
}

// New creates a vertex processor.
func New[C any](cfg Config, callback Callback[C]) *Processor[C] {
	if cfg.MaxParallelChecks == 0 {
		cfg.MaxParallelChecks = runtime.NumCPU()
	}

	f := &Processor[C]{
		cfg:      cfg,
		quit:     make(chan struct{}),
		callback: callback,
		semaphore: datasemaphore.New(cfg.SemaphoreLimit, func(held, releasing dag.Metric) {
			log.Warn("Vertices semaphore inconsistency", "held", held.Num, "releasing", releasing.Num)
		}),
		Log: log.New("module", "dagprocessor"),
	}
	f.orderedInserter = workers.New(&f.wg, f.quit, cfg.MaxTasks())
	f.unorderedInserters = workers.New(&f.wg, f.quit, cfg.MaxTasks())
	f.checkers = workers.New(&f.wg, f.quit, cfg.MaxTasks())
	return f
}

// Start boots up the vertices processor.
func (f *Processor[C]) Start() {
	f.orderedInserter.Start(1)
	f.unorderedInserters.Start(f.cfg.MaxParallelChecks)
	f.checkers.Start(f.cfg.MaxParallelChecks)
}

// Stop interrupts the processor, canceling all the pending operations.
// Stop waits until all the internal goroutines have finished.
func (f *Processor[C]) Stop() {
	close(f.quit)
	f.semaphore.Terminate()
	f.unorderedInserters.Drain()
	f.orderedInserter.Drain()
	f.checkers.Drain()
	f.wg.Wait()
}

// Overloaded returns true if too much vertices are being processed
func (f *Processor[C]) Overloaded() bool {
	return f.unorderedInserters.TasksCount() > f.cfg.MaxTasks()*3/4 ||
		f.orderedInserter.TasksCount() > f.cfg.MaxTasks()*3/4
}

func metricOf[C any](vv []*dag.BaseVertex[C]) dag.Metric {
	m := dag.Metric{Num: uint64(len(vv))}
	for _, v := range vv {
		m.Size += uint64(v.Size())
	}
	return m
}

// Enqueue schedules the vertices received from the peer.
// Ordered vertices are submitted in the received order, one chunk at a time.
// The missing panorama entries of pending vertices are passed to notifyMissing.
func (f *Processor[C]) Enqueue(peer string, vertices []*dag.BaseVertex[C], ordered bool, notifyMissing func(hash.Vertices), done func()) error {
	metric := metricOf(vertices)
	if !f.semaphore.Acquire(metric, f.cfg.SemaphoreTimeout) {
		return ErrBusy
	}

	inserter := f.unorderedInserters
	if ordered {
		inserter = f.orderedInserter
	}

	err := inserter.Enqueue(func() {
		if done != nil {
			defer done()
		}
		defer f.semaphore.Release(metric)

		errs := f.checkAll(vertices)
		if errs == nil && len(vertices) != 0 {
			return
		}

		missing := hash.VerticesSet{}
		for i, v := range vertices {
			select {
			case <-f.quit:
				return
			default:
			}
			missing.Add(f.process(peer, v, errs[i])...)
		}

		// request unknown panorama entries
		if notifyMissing != nil && len(missing) != 0 {
			notifyMissing(missing.Slice())
		}
	})
	if err != nil {
		f.semaphore.Release(metric)
	}
	return err
}

// checkAll runs the stateless checks on the checkers pool.
// The result is nil if the processor is stopped meanwhile.
func (f *Processor[C]) checkAll(vertices []*dag.BaseVertex[C]) []error {
	errs := make([]error, len(vertices))
	checked := make(chan struct{}, len(vertices))
	for i := range vertices {
		i := i
		err := f.checkers.Enqueue(func() {
			errs[i] = f.callback.Vertex.CheckStateless(vertices[i])
			checked <- struct{}{}
		})
		if err != nil {
			return nil
		}
	}
	for range vertices {
		select {
		case <-checked:
		case <-f.quit:
			return nil
		}
	}
	return errs
}

func (f *Processor[C]) process(peer string, v *dag.BaseVertex[C], checkErr error) hash.Vertices {
	// drop vertex if failed validation
	if checkErr != nil {
		f.misbehaviour(peer, checkErr)
		f.drop(v, peer, checkErr)
		return nil
	}
	// drop vertex if it's too far in future
	if f.callback.HighestLamport != nil {
		highest := f.callback.HighestLamport()
		if uint64(v.Lamport()) > uint64(highest)+f.cfg.FutureLamportLimit {
			f.drop(v, peer, ErrTooFarInFuture)
			return nil
		}
	}

	res, err := f.callback.Vertex.Submit(v, peer)
	if err != nil {
		if vertexcheck.IsBan(err) {
			f.misbehaviour(peer, err)
		} else if errors.Is(err, dagstore.ErrStorageFault) {
			f.Log.Error("Vertex insertion failed", "id", v.ID(), "err", err)
		}
		// a fault after the vertex is stored or found stored doesn't drop it
		if res.Outcome == dagordering.Rejected {
			f.drop(v, peer, err)
		}
		return nil
	}
	if res.Outcome == dagordering.Pending {
		return res.Missing
	}
	return nil
}

func (f *Processor[C]) misbehaviour(peer string, err error) {
	if f.callback.PeerMisbehaviour != nil {
		f.callback.PeerMisbehaviour(peer, err)
	}
}

func (f *Processor[C]) drop(v *dag.BaseVertex[C], peer string, err error) {
	if f.callback.Vertex.Dropped != nil {
		f.callback.Vertex.Dropped(v, peer, err)
	}
}

// Processing returns the metric of the vertices which are being checked or inserted.
func (f *Processor[C]) Processing() dag.Metric {
	return f.semaphore.Processing()
}

func (f *Processor[C]) TasksCount() int {
	return f.orderedInserter.TasksCount() + f.unorderedInserters.TasksCount()
}
