package dag

import (
	"errors"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

var (
	// ErrNonCanonicalPanorama is returned when encoded panorama isn't strictly sorted by validator.
	ErrNonCanonicalPanorama = errors.New("non-canonical panorama encoding")
)

type unsignedMarshaling[C any] struct {
	Creator  idx.ValidatorID
	Seq      idx.Seq
	Lamport  idx.Lamport
	Panorama []panoramaEntry
	Values   []C
}

type signedMarshaling[C any] struct {
	Creator   idx.ValidatorID
	Seq       idx.Seq
	Lamport   idx.Lamport
	Panorama  []panoramaEntry
	Values    []C
	Signature []byte
}

func (v *BaseVertex[C]) unsigned() *unsignedMarshaling[C] {
	return &unsignedMarshaling[C]{
		Creator:  v.creator,
		Seq:      v.seq,
		Lamport:  v.lamport,
		Panorama: v.panorama.entries(),
		Values:   v.values,
	}
}

// calcDigest returns the hash of the unsigned content and the size of the content.
func (v *BaseVertex[C]) calcDigest() (hash.Hash, int) {
	b, err := rlp.EncodeToBytes(v.unsigned())
	if err != nil {
		// values type isn't RLP-encodable
		panic(err)
	}
	return hash.Of(b), len(b)
}

// MarshalBinary serializes the vertex.
func (v *BaseVertex[C]) MarshalBinary() ([]byte, error) {
	return rlp.EncodeToBytes(&signedMarshaling[C]{
		Creator:   v.creator,
		Seq:       v.seq,
		Lamport:   v.lamport,
		Panorama:  v.panorama.entries(),
		Values:    v.values,
		Signature: v.signature,
	})
}

// UnmarshalVertex deserializes the vertex, id and digest are recalculated from the content.
func UnmarshalVertex[C any](raw []byte) (*BaseVertex[C], error) {
	var m signedMarshaling[C]
	if err := rlp.DecodeBytes(raw, &m); err != nil {
		return nil, err
	}
	p, ok := panoramaFromEntries(m.Panorama)
	if !ok {
		return nil, ErrNonCanonicalPanorama
	}

	mv := MutableBaseVertex[C]{}
	mv.SetCreator(m.Creator)
	mv.SetSeq(m.Seq)
	mv.SetLamport(m.Lamport)
	mv.v.panorama = p
	mv.SetValues(m.Values)
	return mv.Build(m.Signature), nil
}
