package dag

import (
	"strings"

	"github.com/Fantom-foundation/vertexdag/hash"
)

// Metric is a number of vertices and their total size.
type Metric struct {
	Num  uint64
	Size uint64
}

// Vertices is a ordered slice of vertices.
type Vertices []Vertex

// String returns human readable representation.
func (vv Vertices) String() string {
	ss := make([]string, len(vv))
	for i := 0; i < len(vv); i++ {
		ss[i] = vv[i].String()
	}
	return strings.Join(ss, " ")
}

func (vv Vertices) Metric() (metric Metric) {
	metric.Num = uint64(len(vv))
	for _, v := range vv {
		metric.Size += uint64(v.Size())
	}
	return metric
}

func (vv Vertices) IDs() hash.Vertices {
	ids := make(hash.Vertices, len(vv))
	for i, v := range vv {
		ids[i] = v.ID()
	}
	return ids
}
