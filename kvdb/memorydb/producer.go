package memorydb

import (
	"sort"
	"sync"

	"github.com/Fantom-foundation/vertexdag/kvdb"
)

// namespace is a set of named in-memory databases, it lives until the process exits.
type namespace struct {
	mu  sync.Mutex
	dbs map[string]*Database
}

var (
	namespacesMu sync.Mutex
	namespaces   = make(map[string]*namespace)
)

func getNamespace(name string) *namespace {
	namespacesMu.Lock()
	defer namespacesMu.Unlock()

	ns, ok := namespaces[name]
	if !ok {
		ns = &namespace{dbs: make(map[string]*Database)}
		if name != "" {
			namespaces[name] = ns
		}
	}
	return ns
}

type Mod func(kvdb.DropableStore) kvdb.DropableStore

type producer struct {
	ns   *namespace
	mods []Mod
}

// NewProducer of memory db. Producers of the same non-empty namespace share the databases,
// an empty namespace is private to the producer.
// A database outlives Close, so it may be reopened until it's dropped.
func NewProducer(namespace string, mods ...Mod) kvdb.DBProducer {
	return &producer{
		ns:   getNamespace(namespace),
		mods: mods,
	}
}

// Names of existing databases.
func (p *producer) Names() []string {
	p.ns.mu.Lock()
	defer p.ns.mu.Unlock()

	names := make([]string, 0, len(p.ns.dbs))
	for name := range p.ns.dbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenDB or create db with name.
func (p *producer) OpenDB(name string) (kvdb.DropableStore, error) {
	p.ns.mu.Lock()
	defer p.ns.mu.Unlock()

	db, ok := p.ns.dbs[name]
	if !ok {
		db = NewWithDrop(func() {
			p.ns.mu.Lock()
			defer p.ns.mu.Unlock()
			delete(p.ns.dbs, name)
		})
		db.reopenable = true
		p.ns.dbs[name] = db
	}

	var res kvdb.DropableStore = db
	for _, mod := range p.mods {
		res = mod(res)
	}
	return res, nil
}
