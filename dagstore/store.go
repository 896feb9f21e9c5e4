package dagstore

import (
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
	"github.com/Fantom-foundation/vertexdag/kvdb"
	"github.com/Fantom-foundation/vertexdag/kvdb/memorydb"
	"github.com/Fantom-foundation/vertexdag/kvdb/table"
	"github.com/Fantom-foundation/vertexdag/vertexcheck"
)

// Header is the in-memory part of a stored vertex.
type Header struct {
	ID       hash.Vertex
	Creator  idx.ValidatorID
	Seq      idx.Seq
	Lamport  idx.Lamport
	Panorama dag.Panorama
}

// SelfParent returns the previous vertex of the creator, if any.
func (h *Header) SelfParent() (hash.Vertex, bool) {
	return h.Panorama.Get(h.Creator)
}

type slot struct {
	creator idx.ValidatorID
	seq     idx.Seq
}

// Store is the protocol state: a DAG of vertices persisted in a key-value database.
// Every table lives in one database, so a single batch commits an insertion atomically.
type Store[C any] struct {
	cfg      Config
	db       kvdb.Store
	checkers *vertexcheck.Checkers

	table struct {
		Vertices  *table.Table `table:"v"`
		Latest    *table.Table `table:"l"`
		Children  *table.Table `table:"c"`
		Cheaters  *table.Table `table:"x"`
		Finalized *table.Table `table:"f"`
		Batches   *table.Table `table:"b"`
		State     *table.Table `table:"d"`
		// insertion position -> id
		Arrivals *table.Table `table:"o"`
	}

	// vertex cache, it's thread-safe
	cache *lru.Cache

	mu sync.RWMutex

	headers  map[hash.Vertex]*Header
	slots    map[slot]hash.Vertices
	latest   map[idx.ValidatorID]hash.Vertex
	cheaters map[idx.ValidatorID]*consensus.Equivocation

	finalized     map[hash.Vertex]idx.Batch
	lastFinalized map[idx.ValidatorID]hash.Vertex
	state         State

	lastEquivocation *consensus.Equivocation

	Log log.Logger
}

// New opens the store over key-value db. The state stored in db is restored.
func New[C any](db kvdb.Store, ctx consensus.Context, cfg Config) (*Store[C], error) {
	s := &Store[C]{
		cfg:           cfg,
		db:            db,
		headers:       make(map[hash.Vertex]*Header),
		slots:         make(map[slot]hash.Vertices),
		latest:        make(map[idx.ValidatorID]hash.Vertex),
		cheaters:      make(map[idx.ValidatorID]*consensus.Equivocation),
		finalized:     make(map[hash.Vertex]idx.Batch),
		lastFinalized: make(map[idx.ValidatorID]hash.Vertex),
		Log:           log.New("module", "dagstore"),
	}
	s.checkers = vertexcheck.New(cfg.Check, ctx, chainReader[C]{s})

	table.MigrateTables(&s.table, s.db)

	var err error
	s.cache, err = lru.New(cfg.VertexCacheSize)
	if err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemStore creates store over memory map.
// Store is always blank.
func NewMemStore[C any](ctx consensus.Context) *Store[C] {
	s, err := New[C](memorydb.New(), ctx, LiteConfig())
	if err != nil {
		panic(err)
	}
	return s
}

// Close leaves underlying database.
func (s *Store[C]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table.MigrateTables(&s.table, nil)
	s.cache.Purge()
	return s.db.Close()
}

// Checkers returns the validator bound to the store.
func (s *Store[C]) Checkers() *vertexcheck.Checkers {
	return s.checkers
}

// load restores the in-memory indexes from the tables.
func (s *Store[C]) load() error {
	it := s.table.Vertices.NewIterator(nil, nil)
	for it.Next() {
		v, err := dag.UnmarshalVertex[C](it.Value())
		if err != nil {
			it.Release()
			return errors.Wrapf(err, "failed to decode vertex %x", it.Key())
		}
		s.index(v)
	}
	err := it.Error()
	it.Release()
	if err != nil {
		return errors.Wrap(err, "failed to read vertices")
	}

	err = forEach(s.table.Latest, func(key, val []byte) error {
		s.latest[idx.BytesToValidatorID(key)] = hash.BytesToVertex(val)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to read latest vertices")
	}

	err = forEach(s.table.Cheaters, func(key, val []byte) error {
		e := &consensus.Equivocation{}
		if err := rlp.DecodeBytes(val, e); err != nil {
			return err
		}
		s.cheaters[e.Validator] = e
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to read cheaters")
	}

	err = forEach(s.table.Finalized, func(key, val []byte) error {
		s.markFinalized(hash.BytesToVertex(key), idx.BytesToBatch(val))
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to read finalized vertices")
	}

	raw, err := s.table.State.Get([]byte(stateKey))
	if err != nil {
		return errors.Wrap(err, "failed to read state")
	}
	if raw != nil {
		if err := rlp.DecodeBytes(raw, &s.state); err != nil {
			return errors.Wrap(err, "failed to decode state")
		}
	}

	if len(s.headers) != 0 {
		s.Log.Info("DAG is loaded", "vertices", len(s.headers), "validators", len(s.latest),
			"cheaters", len(s.cheaters), "batches", s.state.LastBatch)
	}
	return nil
}

func forEach(t *table.Table, fn func(key, val []byte) error) error {
	it := t.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}

// index adds the vertex into the in-memory indexes.
func (s *Store[C]) index(v dag.Vertex) {
	h := &Header{
		ID:       v.ID(),
		Creator:  v.Creator(),
		Seq:      v.Seq(),
		Lamport:  v.Lamport(),
		Panorama: v.Panorama(),
	}
	s.headers[h.ID] = h
	sl := slot{h.Creator, h.Seq}
	s.slots[sl] = append(s.slots[sl], h.ID)
}
