// Package fallible wraps a store to fail writes on demand. Used to test storage faults.
package fallible

import (
	"errors"
	"sync"

	"github.com/Fantom-foundation/vertexdag/kvdb"
)

// ErrWriteFailed is returned by writes after the write budget is exhausted.
var ErrWriteFailed = errors.New("fallible: write failed")

// Fallible is a kvdb.Store wrapper around any kvdb.Store.
// Each Put, Delete or batch Write spends one write of the budget.
type Fallible struct {
	kvdb.Store

	mu         sync.Mutex
	writeCount int
}

// Wrap returns a wrapped kvdb.Store with an unlimited write budget.
func Wrap(db kvdb.Store) *Fallible {
	return &Fallible{
		Store:      db,
		writeCount: -1,
	}
}

// SetWriteCount to n writes before failure. A negative n means no limit.
func (f *Fallible) SetWriteCount(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCount = n
}

// GetWriteCount returns the rest of the write budget.
func (f *Fallible) GetWriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeCount
}

func (f *Fallible) spend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeCount < 0 {
		return nil
	}
	if f.writeCount == 0 {
		return ErrWriteFailed
	}
	f.writeCount--
	return nil
}

// Put puts key-value pair into db.
func (f *Fallible) Put(key []byte, value []byte) error {
	if err := f.spend(); err != nil {
		return err
	}
	return f.Store.Put(key, value)
}

// Delete removes key-value pair by key.
func (f *Fallible) Delete(key []byte) error {
	if err := f.spend(); err != nil {
		return err
	}
	return f.Store.Delete(key)
}

// NewBatch creates a write-only key-value store that buffers changes to its host
// database until a final write is called.
func (f *Fallible) NewBatch() kvdb.Batch {
	return &batch{
		Batch: f.Store.NewBatch(),
		db:    f,
	}
}

type batch struct {
	kvdb.Batch
	db *Fallible
}

// Write flushes any accumulated data to disk.
func (b *batch) Write() error {
	if err := b.db.spend(); err != nil {
		return err
	}
	return b.Batch.Write()
}
