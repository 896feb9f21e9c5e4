package kvdb

import (
	"errors"

	"github.com/ethereum/go-ethereum/ethdb"
)

// IdealBatchSize defines the size of the data batches should ideally add in one
// write.
const IdealBatchSize = ethdb.IdealBatchSize

type (
	// Batch is a write-only database that commits changes to its host database
	// when Write is called. A batch cannot be used concurrently.
	Batch = ethdb.Batch

	// Iterator iterates over a database's key/value pairs in ascending key order.
	Iterator = ethdb.Iterator

	// Writer wraps the Put method of a backing data store.
	Writer = ethdb.KeyValueWriter

	// Reader wraps the Has and Get method of a backing data store.
	// Get of a missing key returns nil value and nil error.
	Reader = ethdb.KeyValueReader

	// Batcher wraps the NewBatch method of a backing data store.
	Batcher = ethdb.Batcher

	// Iteratee wraps the NewIterator method of a backing data store.
	Iteratee = ethdb.Iteratee

	// Store contains all the methods required to allow handling different
	// key-value data stores backing the high level database.
	Store = ethdb.KeyValueStore
)

// Droper is able to delete the DB.
type Droper interface {
	Drop()
}

// DropableStore is Droper + Store
type DropableStore interface {
	Store
	Droper
}

// DBProducer represents real db producer.
type DBProducer interface {
	// Names of existing databases.
	Names() []string
	// OpenDB or create db with name.
	OpenDB(name string) (DropableStore, error)
}

// ErrUnsupportedOp is returned by stores which don't own the underlying resources.
var ErrUnsupportedOp = errors.New("operation is unsupported")
