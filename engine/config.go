package engine

import (
	"github.com/Fantom-foundation/vertexdag/dagstore"
	"github.com/Fantom-foundation/vertexdag/gossip/dagordering"
)

// Config of the engine.
type Config struct {
	Store  dagstore.Config
	Buffer dagordering.Config
}

// DefaultConfig for a production node.
func DefaultConfig() Config {
	return Config{
		Store:  dagstore.DefaultConfig(),
		Buffer: dagordering.DefaultConfig(),
	}
}

// LiteConfig is for tests.
func LiteConfig() Config {
	return Config{
		Store:  dagstore.LiteConfig(),
		Buffer: dagordering.LiteConfig(),
	}
}
