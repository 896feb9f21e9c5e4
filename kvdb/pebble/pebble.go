// Package pebble implements the key-value database layer based on Pebble.
package pebble

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/Fantom-foundation/vertexdag/kvdb"
)

// minCache is the minimum amount of memory in bytes to allocate to pebble caches.
const minCache = 1024 * 1024

// Options of the database.
type Options struct {
	// Cache is the memory in bytes for the block cache and the memtable.
	Cache int
	// Handles is the number of open files, pebble's default if zero.
	Handles int
	// Sync makes every write durable before it returns.
	Sync bool

	OnClose func() error
	OnDrop  func()
}

// Database is a Pebble wrapper, the vertices committed with Sync survive a crash.
type Database struct {
	path       string
	underlying *pebble.DB
	wo         *pebble.WriteOptions

	readMeter  metrics.Meter
	writeMeter metrics.Meter

	closeMu sync.Mutex
	onClose func() error
	onDrop  func()
}

// New opens or creates the database.
func New(path string, o Options) (*Database, error) {
	if o.Cache < minCache {
		o.Cache = minCache
	}
	cache := pebble.NewCache(int64(o.Cache * 2 / 3))
	defer cache.Unref()

	db, err := pebble.Open(path, &pebble.Options{
		Cache:        cache,
		MemTableSize: o.Cache / 3,
		MaxOpenFiles: o.Handles,
		MaxConcurrentCompactions: func() int {
			return 3
		},
	})
	if err != nil {
		return nil, err
	}

	wo := pebble.NoSync
	if o.Sync {
		wo = pebble.Sync
	}
	return &Database{
		path:       path,
		underlying: db,
		wo:         wo,
		readMeter:  metrics.GetOrRegisterMeter("vertexdag/pebble/read", nil),
		writeMeter: metrics.GetOrRegisterMeter("vertexdag/pebble/write", nil),
		onClose:    o.OnClose,
		onDrop:     o.OnDrop,
	}, nil
}

// Close flushes the pending writes and releases the files.
func (db *Database) Close() error {
	db.closeMu.Lock()
	defer db.closeMu.Unlock()

	if db.underlying == nil {
		panic("already closed")
	}
	pdb := db.underlying
	db.underlying = nil

	if db.onClose != nil {
		if err := db.onClose(); err != nil {
			return err
		}
		db.onClose = nil
	}
	return pdb.Close()
}

// Drop removes the closed database.
func (db *Database) Drop() {
	if db.underlying != nil {
		panic("Close database first!")
	}
	if db.onDrop != nil {
		db.onDrop()
	}
}

func (db *Database) Has(key []byte) (bool, error) {
	db.readMeter.Mark(1)
	_, closer, err := db.underlying.Get(key)
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

// Get returns nil for a missing key.
func (db *Database) Get(key []byte) ([]byte, error) {
	db.readMeter.Mark(1)
	value, closer, err := db.underlying.Get(key)
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// value is valid only until the closer is closed
	cloned := append([]byte{}, value...)
	return cloned, closer.Close()
}

func (db *Database) Put(key []byte, value []byte) error {
	db.writeMeter.Mark(1)
	return db.underlying.Set(key, value, db.wo)
}

func (db *Database) Delete(key []byte) error {
	db.writeMeter.Mark(1)
	return db.underlying.Delete(key, db.wo)
}

// NewBatch buffers writes until Write is called, they are applied atomically.
func (db *Database) NewBatch() kvdb.Batch {
	return &batch{
		db: db,
		b:  db.underlying.NewBatch(),
	}
}

// NewIterator iterates the keys with the prefix in ascending order, starting at prefix+start.
func (db *Database) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	return &iterator{
		Iterator: db.underlying.NewIter(iterOptions(prefix, start)),
	}
}

// iterator adapts pebble's First/Next to the Next-only interface.
type iterator struct {
	*pebble.Iterator
	started bool
	closed  bool
}

func (it *iterator) Next() bool {
	if !it.started {
		it.started = true
		return it.Iterator.First()
	}
	return it.Iterator.Next()
}

func (it *iterator) Release() {
	if !it.closed {
		_ = it.Iterator.Close()
		it.closed = true
	}
}

func iterOptions(prefix, start []byte) *pebble.IterOptions {
	if prefix == nil && start == nil {
		return nil
	}
	o := &pebble.IterOptions{
		LowerBound: append(append([]byte{}, prefix...), start...),
	}
	// the upper bound is the shortest key greater than every key with the prefix
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] < 0xff {
			o.UpperBound = append([]byte{}, prefix[:i+1]...)
			o.UpperBound[i]++
			break
		}
	}
	return o
}

// Stat returns "disk.size", "iostats" or "stats".
func (db *Database) Stat(property string) (string, error) {
	m := db.underlying.Metrics()
	switch property {
	case "disk.size":
		return fmt.Sprintf("%d", m.Total().Size), nil
	case "iostats":
		total := m.Total()
		return fmt.Sprintf("Read(MB):%.5f Write(MB):%.5f",
			float64(total.BytesRead)/(1024*1024),
			float64(total.BytesFlushed+total.BytesCompacted)/(1024*1024)), nil
	case "stats":
		return m.String(), nil
	}
	return "", fmt.Errorf("pebble stat property %s does not exists", property)
}

// Compact the key range, nil bounds mean the whole database.
func (db *Database) Compact(start []byte, limit []byte) error {
	if limit == nil {
		limit = []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	}
	return db.underlying.Compact(start, limit, true)
}

// Path of the database directory.
func (db *Database) Path() string {
	return db.path
}

type batch struct {
	db   *Database
	b    *pebble.Batch
	size int
}

func (b *batch) Put(key, value []byte) error {
	b.size += len(value)
	return b.b.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	b.size++
	return b.b.Delete(key, nil)
}

func (b *batch) ValueSize() int {
	return b.size
}

func (b *batch) Write() error {
	b.db.writeMeter.Mark(int64(b.b.Count()))
	return b.db.underlying.Apply(b.b, b.db.wo)
}

func (b *batch) Reset() {
	b.b.Reset()
	b.size = 0
}

func (b *batch) Replay(w kvdb.Writer) error {
	for r := b.b.Reader(); len(r) > 0; {
		kind, key, value, ok := r.Next()
		if !ok {
			return nil
		}
		var err error
		switch kind {
		case pebble.InternalKeyKindSet:
			err = w.Put(key, value)
		case pebble.InternalKeyKindDelete:
			err = w.Delete(key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

var _ kvdb.DropableStore = (*Database)(nil)
