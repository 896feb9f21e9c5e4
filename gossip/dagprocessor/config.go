package dagprocessor

import (
	"time"

	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/utils/cachescale"
)

type Config struct {
	// SemaphoreLimit of the vertices which are being checked and inserted.
	SemaphoreLimit dag.Metric

	SemaphoreTimeout time.Duration

	// FutureLamportLimit is how far ahead of the highest known Lamport time a vertex may be.
	FutureLamportLimit uint64

	MaxParallelChecks int
}

func (c Config) MaxTasks() int {
	return c.MaxParallelChecks*2 + 1
}

func DefaultConfig(scale cachescale.Func) Config {
	return Config{
		SemaphoreLimit: scale.Metric(dag.Metric{
			Num:  5000,
			Size: 30 * opt.MiB,
		}),
		SemaphoreTimeout:   10 * time.Second,
		FutureLamportLimit: 10000,
	}
}

// LiteConfig is for tests.
func LiteConfig() Config {
	return Config{
		SemaphoreLimit: dag.Metric{
			Num:  500,
			Size: opt.MiB,
		},
		SemaphoreTimeout:   time.Second,
		FutureLamportLimit: 1000,
		MaxParallelChecks:  2,
	}
}
