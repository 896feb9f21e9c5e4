package pebble

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPebble(t *testing.T) {
	require := require.New(t)

	dbs := NewProducer(t.TempDir(), func(string) int { return 16 * 1024 * 1024 })
	db, err := dbs.OpenDB("main")
	require.NoError(err)

	v, err := db.Get([]byte("missing"))
	require.NoError(err)
	require.Nil(v)

	b := db.NewBatch()
	require.NoError(b.Put([]byte("a1"), []byte("1")))
	require.NoError(b.Put([]byte("a2"), []byte("2")))
	require.NoError(b.Put([]byte("b1"), []byte("3")))
	require.NoError(b.Write())

	ok, err := db.Has([]byte("a1"))
	require.NoError(err)
	require.True(ok)

	it := db.NewIterator([]byte("a"), nil)
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Release()
	require.Equal([]string{"a1", "a2"}, keys)

	require.NoError(db.Close())

	db, err = dbs.OpenDB("main")
	require.NoError(err)
	v, err = db.Get([]byte("b1"))
	require.NoError(err)
	require.Equal([]byte("3"), v)
	require.NoError(db.Close())
	db.Drop()
	require.Empty(dbs.Names())
}
