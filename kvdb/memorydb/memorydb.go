// Package memorydb implements the key-value database layer based on memory maps.
package memorydb

import (
	"github.com/ethereum/go-ethereum/ethdb/memorydb"

	"github.com/Fantom-foundation/vertexdag/kvdb"
)

// Database is an ephemeral key-value store.
type Database struct {
	*memorydb.Database

	// reopenable keeps the data on Close
	reopenable bool
	onDrop     func()
}

// New returns an empty database, Close releases the data.
func New() *Database {
	return &Database{
		Database: memorydb.New(),
	}
}

// NewWithDrop is the same as New, but defines onDrop callback.
func NewWithDrop(drop func()) *Database {
	return &Database{
		Database: memorydb.New(),
		onDrop:   drop,
	}
}

// Get returns nil for a missing key.
func (db *Database) Get(key []byte) ([]byte, error) {
	if ok, err := db.Database.Has(key); !ok || err != nil {
		return nil, err
	}
	return db.Database.Get(key)
}

// Close releases the data, unless the database is owned by a producer.
func (db *Database) Close() error {
	if db.reopenable {
		return nil
	}
	return db.Database.Close()
}

// Drop whole database.
func (db *Database) Drop() {
	if db.onDrop != nil {
		db.onDrop()
	}
}

var _ kvdb.DropableStore = (*Database)(nil)
