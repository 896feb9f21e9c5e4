package cachescale

import (
	"github.com/Fantom-foundation/vertexdag/inter/dag"
)

// Func scales the default cache and buffer sizes.
type Func interface {
	I(int) int
	U64(uint64) uint64
	F64(float64) float64
	Metric(m dag.Metric) dag.Metric
}
