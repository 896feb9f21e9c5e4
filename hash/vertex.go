package hash

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

type (
	// Vertex is a unique identifier of a vertex.
	// The first 4 bytes are the vertex Lamport height, the rest is a part of the content digest.
	Vertex Hash

	// Vertices is a slice of vertex ids.
	Vertices []Vertex

	// VerticesSet provides additional methods of vertex id index.
	VerticesSet map[Vertex]struct{}

	// VerticesStack is a LIFO of vertex ids.
	VerticesStack []Vertex
)

var (
	// ZeroVertex is a hash of an empty vertex.
	ZeroVertex = Vertex{}
)

// BuildVertex makes vertex id from the Lamport height and the content digest.
func BuildVertex(lamport idx.Lamport, digest Hash) (id Vertex) {
	copy(id[0:4], lamport.Bytes())
	copy(id[4:], digest[4:])
	return id
}

// BytesToVertex converts bytes to vertex id.
// If b is larger than len(h), b will be cropped from the left.
func BytesToVertex(b []byte) Vertex {
	return Vertex(BytesToHash(b))
}

// FakeVertex generates random fake vertex id for testing purpose.
func FakeVertex(seed ...int64) Vertex {
	return Vertex(FakeHash(seed...))
}

// Bytes returns value as byte slice.
func (h Vertex) Bytes() []byte {
	return (Hash)(h).Bytes()
}

// Lamport returns the Lamport height part of the id.
func (h Vertex) Lamport() idx.Lamport {
	return idx.BytesToLamport(h[0:4])
}

// IsZero returns true if id is empty.
func (h Vertex) IsZero() bool {
	return h == ZeroVertex
}

// Cmp compares ids lexicographically, which is the causal order of vertices.
func (h Vertex) Cmp(other Vertex) int {
	return bytes.Compare(h[:], other[:])
}

// Less returns true if h goes before other in the causal order.
func (h Vertex) Less(other Vertex) bool {
	return h.Cmp(other) < 0
}

// String returns human readable string representation.
func (h Vertex) String() string {
	if name := GetVertexName(h); len(name) > 0 {
		return name
	}
	return h.FullID()
}

// FullID returns the hex representation of the id.
func (h Vertex) FullID() string {
	return (Hash)(h).Hex()
}

// ShortID returns short string representation of the id.
func (h Vertex) ShortID(precision int) string {
	if name := GetVertexName(h); len(name) > 0 {
		return name
	}
	return fmt.Sprintf("%d:%s", h.Lamport(), (Hash)(h).Hex()[2+8:2+8+precision*2])
}

// TerminalString implements log.TerminalStringer.
func (h Vertex) TerminalString() string {
	return h.ShortID(3)
}

/*
 * VerticesSet methods:
 */

// NewVerticesSet makes vertex id index.
func NewVerticesSet(h ...Vertex) VerticesSet {
	hh := VerticesSet{}
	hh.Add(h...)
	return hh
}

// Copy copies ids to a new structure.
func (hh VerticesSet) Copy() VerticesSet {
	ee := make(VerticesSet, len(hh))
	for k, v := range hh {
		ee[k] = v
	}
	return ee
}

// String returns human readable string representation.
func (hh VerticesSet) String() string {
	return hh.Slice().String()
}

// Slice returns the whole index as a slice sorted in the causal order.
func (hh VerticesSet) Slice() Vertices {
	arr := make(Vertices, 0, len(hh))
	for h := range hh {
		arr = append(arr, h)
	}
	arr.Sort()
	return arr
}

// Add appends id to the index.
func (hh VerticesSet) Add(hash ...Vertex) {
	for _, h := range hash {
		hh[h] = struct{}{}
	}
}

// Erase erases id from the index.
func (hh VerticesSet) Erase(hash ...Vertex) {
	for _, h := range hash {
		delete(hh, h)
	}
}

// Contains returns true if id is in.
func (hh VerticesSet) Contains(hash Vertex) bool {
	_, ok := hh[hash]
	return ok
}

/*
 * Vertices methods:
 */

// NewVertices makes vertex id slice.
func NewVertices(h ...Vertex) Vertices {
	hh := Vertices{}
	hh.Add(h...)
	return hh
}

// Copy copies ids to a new structure.
func (hh Vertices) Copy() Vertices {
	return append(Vertices(nil), hh...)
}

// String returns human readable string representation.
func (hh Vertices) String() string {
	ss := make([]string, 0, len(hh))
	for _, h := range hh {
		ss = append(ss, h.String())
	}
	return "[" + strings.Join(ss, ", ") + "]"
}

// Set returns whole index as a VerticesSet.
func (hh Vertices) Set() VerticesSet {
	set := make(VerticesSet, len(hh))
	for _, h := range hh {
		set[h] = struct{}{}
	}
	return set
}

// Add appends id to the slice.
func (hh *Vertices) Add(hash ...Vertex) {
	*hh = append(*hh, hash...)
}

// Sort sorts ids in the causal order.
func (hh Vertices) Sort() {
	sort.Slice(hh, func(i, j int) bool {
		return hh[i].Less(hh[j])
	})
}

/*
 * VerticesStack methods:
 */

// Push id on top.
func (s *VerticesStack) Push(v Vertex) {
	*s = append(*s, v)
}

// PushAll pushes ids on top.
func (s *VerticesStack) PushAll(vv Vertices) {
	*s = append(*s, vv...)
}

// Pop returns the top id and removes it, or nil if the stack is empty.
func (s *VerticesStack) Pop() *Vertex {
	l := len(*s)
	if l == 0 {
		return nil
	}

	res := &(*s)[l-1]
	*s = (*s)[:l-1]

	return res
}

// FakeVertices generates random fake vertex ids for testing purpose.
func FakeVertices(n int, r *rand.Rand) Vertices {
	res := make(Vertices, n)
	for i := range res {
		var h Hash
		_, _ = r.Read(h[:])
		res[i] = Vertex(h)
	}
	return res
}
