package dagordering

import (
	"github.com/Fantom-foundation/vertexdag/inter/dag"
)

// Config of the pending buffer.
type Config struct {
	// Limit of the buffered vertices by count and total size.
	Limit dag.Metric
}

// DefaultConfig for a production node.
func DefaultConfig() Config {
	return Config{
		Limit: dag.Metric{
			Num:  10000,
			Size: 20 * 1024 * 1024,
		},
	}
}

// LiteConfig is for tests.
func LiteConfig() Config {
	return Config{
		Limit: dag.Metric{
			Num:  500,
			Size: 1024 * 1024,
		},
	}
}
