//go:build !js
// +build !js

// Package leveldb implements the key-value database layer based on LevelDB.
package leveldb

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/Fantom-foundation/vertexdag/kvdb"
)

const (
	// minCache is the minimum amount of memory in bytes to allocate to leveldb
	// read and write caching, split half and half.
	minCache = opt.KiB

	// minHandles is the minimum number of files handles to allocate to the open
	// database files.
	minHandles = 16
)

// Options of the database.
type Options struct {
	// Cache is the memory in bytes for the block cache and the write buffers.
	Cache int
	// Handles is the number of open files.
	Handles int
	// Sync makes every write durable before it returns.
	Sync bool

	OnClose func() error
	OnDrop  func()
}

// Database is a LevelDB wrapper, the vertices committed with Sync survive a crash.
type Database struct {
	path       string
	underlying *leveldb.DB
	wo         *opt.WriteOptions

	readMeter  metrics.Meter
	writeMeter metrics.Meter

	closeMu sync.Mutex
	onClose func() error
	onDrop  func()
}

func aligned256kb(v int) int {
	base := 256 * opt.KiB
	if v < base {
		return v
	}
	return v / base * base
}

// New opens or creates the database, a corrupted one is recovered.
func New(path string, o Options) (*Database, error) {
	if o.Handles < minHandles {
		o.Handles = minHandles
	}
	if o.Cache < minCache {
		o.Cache = minCache
	}

	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: o.Handles,
		BlockCacheCapacity:     aligned256kb(o.Cache / 2),
		WriteBuffer:            aligned256kb(o.Cache / 4), // two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, err
	}

	return &Database{
		path:       path,
		underlying: db,
		wo:         &opt.WriteOptions{Sync: o.Sync},
		readMeter:  metrics.GetOrRegisterMeter("vertexdag/leveldb/read", nil),
		writeMeter: metrics.GetOrRegisterMeter("vertexdag/leveldb/write", nil),
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
	ldb := db.underlying
	db.underlying = nil

	if db.onClose != nil {
		if err := db.onClose(); err != nil {
			return err
		}
		db.onClose = nil
	}
	return ldb.Close()
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
	return db.underlying.Has(key, nil)
}

// Get returns nil for a missing key.
func (db *Database) Get(key []byte) ([]byte, error) {
	db.readMeter.Mark(1)
	dat, err := db.underlying.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return dat, err
}

func (db *Database) Put(key []byte, value []byte) error {
	db.writeMeter.Mark(1)
	return db.underlying.Put(key, value, db.wo)
}

func (db *Database) Delete(key []byte) error {
	db.writeMeter.Mark(1)
	return db.underlying.Delete(key, db.wo)
}

// NewBatch buffers writes until Write is called, they are applied atomically.
func (db *Database) NewBatch() kvdb.Batch {
	return &batch{
		db: db,
		b:  new(leveldb.Batch),
	}
}

// NewIterator iterates the keys with the prefix in ascending order, starting at prefix+start.
func (db *Database) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	r := util.BytesPrefix(prefix)
	r.Start = append(r.Start, start...)
	return db.underlying.NewIterator(r, nil)
}

// Stat returns "disk.size" or a leveldb property.
func (db *Database) Stat(property string) (string, error) {
	if property == "disk.size" {
		stats := &leveldb.DBStats{}
		if err := db.underlying.Stats(stats); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", stats.LevelSizes.Sum()), nil
	}
	return db.underlying.GetProperty("leveldb." + property)
}

// Compact the key range, nil bounds mean the whole database.
func (db *Database) Compact(start []byte, limit []byte) error {
	return db.underlying.CompactRange(util.Range{Start: start, Limit: limit})
}

// Path of the database directory.
func (db *Database) Path() string {
	return db.path
}

type batch struct {
	db   *Database
	b    *leveldb.Batch
	size int
}

func (b *batch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size++
	return nil
}

func (b *batch) ValueSize() int {
	return b.size
}

func (b *batch) Write() error {
	b.db.writeMeter.Mark(int64(b.b.Len()))
	return b.db.underlying.Write(b.b, b.db.wo)
}

func (b *batch) Reset() {
	b.b.Reset()
	b.size = 0
}

func (b *batch) Replay(w kvdb.Writer) error {
	r := &replayer{w: w}
	if err := b.b.Replay(r); err != nil {
		return err
	}
	return r.err
}

// replayer stops on the first failed write.
type replayer struct {
	w   kvdb.Writer
	err error
}

func (r *replayer) Put(key, value []byte) {
	if r.err == nil {
		r.err = r.w.Put(key, value)
	}
}

func (r *replayer) Delete(key []byte) {
	if r.err == nil {
		r.err = r.w.Delete(key)
	}
}

var _ kvdb.DropableStore = (*Database)(nil)
