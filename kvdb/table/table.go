// Package table gives a keyspace of its own to every part of a store, by
// prefixing keys. Writes into several tables of one store can share a batch.
package table

import (
	"github.com/Fantom-foundation/vertexdag/kvdb"
)

// Table is a view of the underlying store restricted to the keys with its prefix.
type Table struct {
	db     kvdb.Store
	prefix []byte
}

func New(db kvdb.Store, prefix []byte) *Table {
	return &Table{
		db:     db,
		prefix: append([]byte(nil), prefix...),
	}
}

// NewTable makes a nested table.
func (t *Table) NewTable(prefix []byte) *Table {
	return New(t, prefix)
}

func (t *Table) key(k []byte) []byte {
	res := make([]byte, 0, len(t.prefix)+len(k))
	return append(append(res, t.prefix...), k...)
}

func (t *Table) trim(k []byte) []byte {
	if len(k) < len(t.prefix) {
		return k
	}
	return k[len(t.prefix):]
}

func (t *Table) Has(key []byte) (bool, error) {
	return t.db.Has(t.key(key))
}

func (t *Table) Get(key []byte) ([]byte, error) {
	return t.db.Get(t.key(key))
}

func (t *Table) Put(key []byte, value []byte) error {
	return t.db.Put(t.key(key), value)
}

func (t *Table) Delete(key []byte) error {
	return t.db.Delete(t.key(key))
}

// NewIterator iterates the table keys with the given prefix, starting at prefix+start.
// Keys are returned without the table prefix.
func (t *Table) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	return &iterator{
		Iterator: t.db.NewIterator(t.key(prefix), start),
		t:        t,
	}
}

func (t *Table) Stat(property string) (string, error) {
	return t.db.Stat(property)
}

// Compact the table range. A nil limit means the end of the table.
func (t *Table) Compact(start []byte, limit []byte) error {
	end := t.key(limit)
	if limit == nil {
		end = incPrefix(t.prefix)
	}
	return t.db.Compact(t.key(start), end)
}

// Close is unsupported, the table doesn't own the store.
func (t *Table) Close() error {
	return kvdb.ErrUnsupportedOp
}

func (t *Table) NewBatch() kvdb.Batch {
	return t.WrapBatch(t.db.NewBatch())
}

// WrapBatch makes the table view of a batch of the underlying store.
func (t *Table) WrapBatch(b kvdb.Batch) kvdb.Batch {
	return &batch{Batch: b, t: t}
}

// incPrefix returns the least key greater than every key with the prefix,
// or nil if there is none.
func incPrefix(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			return end
		}
		end[i] = 0
	}
	return nil
}

type batch struct {
	kvdb.Batch
	t *Table
}

func (b *batch) Put(key, value []byte) error {
	return b.Batch.Put(b.t.key(key), value)
}

func (b *batch) Delete(key []byte) error {
	return b.Batch.Delete(b.t.key(key))
}

// Replay writes the batch content into w, without the table prefix.
func (b *batch) Replay(w kvdb.Writer) error {
	return b.Batch.Replay(&replayer{Writer: w, t: b.t})
}

type replayer struct {
	kvdb.Writer
	t *Table
}

func (r *replayer) Put(key, value []byte) error {
	return r.Writer.Put(r.t.trim(key), value)
}

func (r *replayer) Delete(key []byte) error {
	return r.Writer.Delete(r.t.trim(key))
}

type iterator struct {
	kvdb.Iterator
	t *Table
}

func (it *iterator) Key() []byte {
	return it.t.trim(it.Iterator.Key())
}
