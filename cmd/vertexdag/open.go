package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/consensus/keys"
	"github.com/Fantom-foundation/vertexdag/engine"
	"github.com/Fantom-foundation/vertexdag/inter/dag/tdag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
	"github.com/Fantom-foundation/vertexdag/inter/pos"
	"github.com/Fantom-foundation/vertexdag/kvdb"
	"github.com/Fantom-foundation/vertexdag/kvdb/leveldb"
	"github.com/Fantom-foundation/vertexdag/kvdb/memorydb"
	"github.com/Fantom-foundation/vertexdag/kvdb/pebble"
	"github.com/Fantom-foundation/vertexdag/utils/cachescale"
)

const (
	dbName          = "vertexdag"
	defaultCacheMiB = 256
)

func cacheScale(v *viper.Viper) cachescale.Func {
	return cachescale.MiB(uint64(v.GetInt(flagCache)), defaultCacheMiB)
}

func producer(v *viper.Viper) (kvdb.DBProducer, error) {
	cache := func(string) int {
		return v.GetInt(flagCache) * 1024 * 1024 / 2
	}
	switch kind := v.GetString(flagDB); kind {
	case "leveldb":
		return leveldb.NewProducer(v.GetString(flagDataDir), cache), nil
	case "pebble":
		return pebble.NewProducer(v.GetString(flagDataDir), cache), nil
	case "memory":
		return memorydb.NewProducer(v.GetString(flagDataDir)), nil
	default:
		return nil, fmt.Errorf("unknown database engine %q", kind)
	}
}

func openDB(v *viper.Viper) (kvdb.DropableStore, error) {
	p, err := producer(v)
	if err != nil {
		return nil, err
	}
	return p.OpenDB(dbName)
}

type fakenet struct {
	nodes []idx.ValidatorID
	kr    *keys.Keyring
	ctx   *consensus.Basic
}

// newFakenet makes the validators 1..N with equal weights and deterministic keys.
func newFakenet(v *viper.Viper) (*fakenet, error) {
	n := v.GetInt(flagValidators)
	if n <= 0 {
		return nil, fmt.Errorf("at least one validator is required, got %d", n)
	}
	nodes := tdag.GenNodes(n)
	kr := keys.FakeKeyring(nodes...)
	return &fakenet{
		nodes: nodes,
		kr:    kr,
		ctx:   consensus.NewBasic(pos.EqualWeightValidators(nodes, 1), kr.PubKeys(), nil),
	}, nil
}

func engineConfig(v *viper.Viper) engine.Config {
	cfg := engine.DefaultConfig()
	scale := cacheScale(v)
	cfg.Store.VertexCacheSize = scale.I(cfg.Store.VertexCacheSize)
	cfg.Buffer.Limit = scale.Metric(cfg.Buffer.Limit)
	return cfg
}

// openEngine opens the persisted engine, the caller closes it.
func openEngine(v *viper.Viper, net *fakenet) (*engine.Engine[string], error) {
	db, err := openDB(v)
	if err != nil {
		return nil, err
	}
	e, err := engine.New[string](db, net.ctx, engineConfig(v), engine.Callbacks{})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return e, nil
}
