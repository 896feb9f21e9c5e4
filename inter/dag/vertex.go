package dag

import (
	"fmt"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// Signature is an opaque signature of the vertex digest.
type Signature []byte

// Vertex is the value-agnostic part of a DAG vertex.
type Vertex interface {
	ID() hash.Vertex
	Creator() idx.ValidatorID
	Seq() idx.Seq
	Lamport() idx.Lamport

	Panorama() Panorama
	SelfParent() *hash.Vertex
	IsSelfParent(id hash.Vertex) bool

	Signature() Signature
	Digest() hash.Hash
	ValuesNum() int

	String() string

	Size() int
}

// ValuesVertex is a vertex carrying a batch of proposed values.
type ValuesVertex[C any] interface {
	Vertex
	Values() []C
}

// BaseVertex is a signed vote bundling a batch of values.
// Immutable, build it with MutableBaseVertex.
type BaseVertex[C any] struct {
	creator idx.ValidatorID
	seq     idx.Seq
	lamport idx.Lamport

	panorama Panorama
	values   []C

	signature Signature

	digest hash.Hash
	id     hash.Vertex
	size   int
}

// MutableBaseVertex is a builder of BaseVertex.
type MutableBaseVertex[C any] struct {
	v BaseVertex[C]
}

// String returns string representation.
func (v *BaseVertex[C]) String() string {
	return fmt.Sprintf("{id=%s, p=%s, by=%d, seq=%d, values=%d}", v.id.ShortID(3), v.panorama.String(), v.creator, v.seq, len(v.values))
}

// SelfParent returns vertex's self-parent, if any
func (v *BaseVertex[C]) SelfParent() *hash.Vertex {
	id, ok := v.panorama[v.creator]
	if !ok {
		return nil
	}
	return &id
}

// IsSelfParent is true if specified ID is vertex's self-parent
func (v *BaseVertex[C]) IsSelfParent(id hash.Vertex) bool {
	sp := v.SelfParent()
	return sp != nil && *sp == id
}

func (v *BaseVertex[C]) ID() hash.Vertex { return v.id }

func (v *BaseVertex[C]) Creator() idx.ValidatorID { return v.creator }

func (v *BaseVertex[C]) Seq() idx.Seq { return v.seq }

func (v *BaseVertex[C]) Lamport() idx.Lamport { return v.lamport }

func (v *BaseVertex[C]) Panorama() Panorama { return v.panorama }

func (v *BaseVertex[C]) Values() []C { return v.values }

func (v *BaseVertex[C]) ValuesNum() int { return len(v.values) }

func (v *BaseVertex[C]) Signature() Signature { return v.signature }

// Digest is the hash of the unsigned content, which the signature covers.
func (v *BaseVertex[C]) Digest() hash.Hash { return v.digest }

// Size is the size of the serialized vertex.
func (v *BaseVertex[C]) Size() int { return v.size }

func (mv *MutableBaseVertex[C]) Creator() idx.ValidatorID { return mv.v.creator }

func (mv *MutableBaseVertex[C]) Seq() idx.Seq { return mv.v.seq }

func (mv *MutableBaseVertex[C]) Lamport() idx.Lamport { return mv.v.lamport }

func (mv *MutableBaseVertex[C]) Panorama() Panorama { return mv.v.panorama }

func (mv *MutableBaseVertex[C]) Values() []C { return mv.v.values }

func (mv *MutableBaseVertex[C]) SetCreator(v idx.ValidatorID) { mv.v.creator = v }

func (mv *MutableBaseVertex[C]) SetSeq(v idx.Seq) { mv.v.seq = v }

func (mv *MutableBaseVertex[C]) SetLamport(v idx.Lamport) { mv.v.lamport = v }

func (mv *MutableBaseVertex[C]) SetPanorama(p Panorama) { mv.v.panorama = p.Copy() }

func (mv *MutableBaseVertex[C]) SetValues(vv []C) { mv.v.values = vv }

// Observe sets the observed vertex of validator.
func (mv *MutableBaseVertex[C]) Observe(v idx.ValidatorID, id hash.Vertex) {
	if mv.v.panorama == nil {
		mv.v.panorama = Panorama{}
	}
	mv.v.panorama[v] = id
}

// CalcLamport sets Lamport to 1 + max Lamport of the observed vertices.
func (mv *MutableBaseVertex[C]) CalcLamport() {
	var max idx.Lamport
	for _, id := range mv.v.panorama {
		max = idx.MaxLamport(max, id.Lamport())
	}
	mv.v.lamport = max + 1
}

// Digest calculates the hash of the unsigned content.
func (mv *MutableBaseVertex[C]) Digest() hash.Hash {
	digest, _ := mv.v.calcDigest()
	return digest
}

// Build builds immutable vertex signed with sig.
func (mv *MutableBaseVertex[C]) Build(sig Signature) *BaseVertex[C] {
	v := mv.v
	if v.panorama == nil {
		v.panorama = Panorama{}
	} else {
		v.panorama = v.panorama.Copy()
	}
	v.values = append([]C(nil), v.values...)
	v.signature = append(Signature(nil), sig...)

	v.digest, _ = v.calcDigest()
	v.id = hash.BuildVertex(v.lamport, v.digest)
	if b, err := v.MarshalBinary(); err == nil {
		v.size = len(b)
	}
	return &v
}
