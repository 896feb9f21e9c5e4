package tdag

import (
	"sort"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// TestVertex is a vertex proposing string values.
type TestVertex = dag.BaseVertex[string]

// TestVertices is a ordered slice of vertices.
type TestVertices []*TestVertex

// Dag returns the vertices as dag.Vertices.
func (vv TestVertices) Dag() dag.Vertices {
	res := make(dag.Vertices, len(vv))
	for i, v := range vv {
		res[i] = v
	}
	return res
}

// ByParents returns vertices topologically ordered by panorama dependency.
// Used only for tests.
func ByParents(vv dag.Vertices) (res dag.Vertices) {
	unsorted := make(dag.Vertices, len(vv))
	exists := hash.VerticesSet{}
	for i, v := range vv {
		unsorted[i] = v
		exists.Add(v.ID())
	}
	ready := hash.VerticesSet{}
	for len(unsorted) > 0 {
	VERTICES:
		for i, v := range unsorted {

			for _, p := range v.Panorama() {
				if exists.Contains(p) && !ready.Contains(p) {
					continue VERTICES
				}
			}

			res = append(res, v)
			unsorted = append(unsorted[0:i], unsorted[i+1:]...)
			ready.Add(v.ID())
			break
		}
	}

	return
}

// ByParents returns vertices topologically ordered by panorama dependency.
// Used only for tests.
func (vv TestVertices) ByParents() TestVertices {
	sorted := ByParents(vv.Dag())
	res := make(TestVertices, len(sorted))
	for i, v := range sorted {
		res[i] = v.(*TestVertex)
	}
	return res
}

// ByID returns vertices sorted by id, which is a dependency-respecting order.
func (vv TestVertices) ByID() TestVertices {
	res := append(TestVertices(nil), vv...)
	sort.Slice(res, func(i, j int) bool {
		return res[i].ID().Less(res[j].ID())
	})
	return res
}

// Flatten joins vertices of all the nodes.
func Flatten(vertices map[idx.ValidatorID]TestVertices) (res TestVertices) {
	for _, vv := range vertices {
		res = append(res, vv...)
	}
	return
}
