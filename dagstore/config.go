package dagstore

import (
	"github.com/Fantom-foundation/vertexdag/vertexcheck/basiccheck"
)

// Config for the DAG store.
type Config struct {
	// VertexCacheSize is the number of decoded vertices kept in memory.
	VertexCacheSize int
	// Check limits of the validator.
	Check basiccheck.Config
}

// DefaultConfig for a production node.
func DefaultConfig() Config {
	return Config{
		VertexCacheSize: 10000,
		Check:           basiccheck.DefaultConfig(),
	}
}

// LiteConfig is for tests or inmemory.
func LiteConfig() Config {
	return Config{
		VertexCacheSize: 100,
		Check:           basiccheck.DefaultConfig(),
	}
}
