package pebble

import (
	"os"
	"path/filepath"

	"github.com/Fantom-foundation/vertexdag/kvdb"
)

// Producer opens the databases as subdirectories of datadir.
type Producer struct {
	datadir  string
	getCache func(string) int
}

// NewProducer of pebble db. The databases it opens write synchronously.
func NewProducer(datadir string, getCache func(string) int) kvdb.DBProducer {
	return &Producer{
		datadir:  datadir,
		getCache: getCache,
	}
}

// Names of existing databases.
func (p *Producer) Names() []string {
	entries, err := os.ReadDir(p.datadir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// OpenDB or create db with name.
func (p *Producer) OpenDB(name string) (kvdb.DropableStore, error) {
	path := filepath.Join(p.datadir, name)
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, err
	}
	return New(path, Options{
		Cache: p.getCache(name),
		Sync:  true,
		OnDrop: func() {
			_ = os.RemoveAll(path)
		},
	})
}
