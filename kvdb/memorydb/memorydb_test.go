package memorydb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMissingKey(t *testing.T) {
	db := New()

	v, err := db.Get([]byte("missing"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	v, err = db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)
}

func TestProducer(t *testing.T) {
	require := require.New(t)

	dbs := NewProducer("")
	db1, err := dbs.OpenDB("db1")
	require.NoError(err)
	require.NoError(db1.Put([]byte("k"), []byte("v")))

	// reopening gives the same data
	again, err := dbs.OpenDB("db1")
	require.NoError(err)
	v, err := again.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)
	require.Equal([]string{"db1"}, dbs.Names())

	require.NoError(db1.Close())
	db1.Drop()
	require.Empty(dbs.Names())
}

func TestProducerReopen(t *testing.T) {
	require := require.New(t)

	db, err := NewProducer("reopen").OpenDB("db")
	require.NoError(err)
	require.NoError(db.Put([]byte("k"), []byte("v")))
	require.NoError(db.Close())

	// data survives Close within the namespace
	db, err = NewProducer("reopen").OpenDB("db")
	require.NoError(err)
	v, err := db.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)

	// private namespaces
	other, err := NewProducer("").OpenDB("db")
	require.NoError(err)
	v, err = other.Get([]byte("k"))
	require.NoError(err)
	require.Nil(v)

	db.Drop()
	require.Empty(NewProducer("reopen").Names())
}
