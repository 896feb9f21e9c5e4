package cachescale

import (
	"github.com/Fantom-foundation/vertexdag/inter/dag"
)

// Ratio alters the cache sizes proportionally to a ratio
type Ratio struct {
	Base   uint64
	Target uint64
}

var _ Func = (*Ratio)(nil)

// Identity doesn't alter the cache sizes
var Identity = Ratio{1, 1}

// MiB makes the ratio of the target memory amount to the default one, both in MiB.
func MiB(target, base uint64) Ratio {
	if base == 0 || target == 0 {
		return Identity
	}
	return Ratio{Base: base, Target: target}
}

func (r Ratio) U64(v uint64) uint64 {
	muled := v * r.Target
	if muled%r.Base == 0 {
		return muled / r.Base
	}
	return muled/r.Base + 1
}

func (r Ratio) F64(v float64) float64 {
	return v * (float64(r.Target) / float64(r.Base))
}

func (r Ratio) I(v int) int {
	return int(r.U64(uint64(v)))
}

// Metric scales both the number and the size limits.
func (r Ratio) Metric(m dag.Metric) dag.Metric {
	return dag.Metric{
		Num:  r.U64(m.Num),
		Size: r.U64(m.Size),
	}
}
