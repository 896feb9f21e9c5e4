package dag

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

func fakeVertex(lamport idx.Lamport, seed int64) hash.Vertex {
	h := hash.FakeHash(seed)
	return hash.BuildVertex(lamport, h)
}

func TestVertexBuild(t *testing.T) {
	require := require.New(t)

	a := fakeVertex(3, 1)
	b := fakeVertex(5, 2)

	mv := MutableBaseVertex[string]{}
	mv.SetCreator(1)
	mv.SetSeq(2)
	mv.Observe(1, a)
	mv.Observe(2, b)
	mv.SetValues([]string{"tx1", "tx2"})
	mv.CalcLamport()
	require.Equal(idx.Lamport(6), mv.Lamport())

	digest := mv.Digest()
	v := mv.Build(Signature{1, 2, 3})

	require.Equal(digest, v.Digest())
	require.Equal(idx.Lamport(6), v.ID().Lamport())
	require.Equal(digest[4:], v.ID().Bytes()[4:])
	require.Equal(a, *v.SelfParent())
	require.True(v.IsSelfParent(a))
	require.False(v.IsSelfParent(b))
	require.Equal(2, v.ValuesNum())

	// the builder doesn't share state with built vertices
	mv.Observe(3, b)
	mv.SetSeq(3)
	require.Equal(2, v.Panorama().Len())
	require.Equal(idx.Seq(2), v.Seq())

	// signature isn't a part of the id
	other := MutableBaseVertex[string]{}
	other.SetCreator(1)
	other.SetSeq(2)
	other.SetPanorama(Panorama{1: a, 2: b})
	other.SetValues([]string{"tx1", "tx2"})
	other.SetLamport(6)
	require.Equal(v.ID(), other.Build(Signature{4, 5, 6}).ID())
}

func TestVertexGenesis(t *testing.T) {
	mv := MutableBaseVertex[string]{}
	mv.SetCreator(7)
	mv.CalcLamport()
	v := mv.Build(nil)

	assert.Nil(t, v.SelfParent())
	assert.Equal(t, idx.Lamport(1), v.Lamport())
	assert.Equal(t, 0, v.Panorama().Len())
	assert.Equal(t, 0, v.ValuesNum())
}

func TestVertexMarshaling(t *testing.T) {
	require := require.New(t)

	mv := MutableBaseVertex[string]{}
	mv.SetCreator(2)
	mv.SetSeq(1)
	mv.Observe(2, fakeVertex(1, 1))
	mv.Observe(1, fakeVertex(1, 2))
	mv.Observe(3, fakeVertex(2, 3))
	mv.SetValues([]string{"a", "", "c"})
	mv.CalcLamport()
	v := mv.Build(Signature{0xff, 0x01})

	raw, err := v.MarshalBinary()
	require.NoError(err)
	require.Equal(len(raw), v.Size())

	got, err := UnmarshalVertex[string](raw)
	require.NoError(err)
	require.Equal(v.ID(), got.ID())
	require.Equal(v.Digest(), got.Digest())
	require.Equal(v.Panorama(), got.Panorama())
	require.Equal(v.Values(), got.Values())
	require.Equal(v.Signature(), got.Signature())
	require.Equal(v.String(), got.String())
}

func TestVertexNonCanonicalPanorama(t *testing.T) {
	raw, err := rlp.EncodeToBytes(&signedMarshaling[string]{
		Creator: 1,
		Lamport: 2,
		Panorama: []panoramaEntry{
			{Validator: 2, ID: fakeVertex(1, 1)},
			{Validator: 1, ID: fakeVertex(1, 2)},
		},
	})
	require.NoError(t, err)

	_, err = UnmarshalVertex[string](raw)
	require.ErrorIs(t, err, ErrNonCanonicalPanorama)

	_, err = UnmarshalVertex[string]([]byte{0x01, 0x02})
	require.Error(t, err)
}

func TestPanorama(t *testing.T) {
	a, b, c := fakeVertex(1, 1), fakeVertex(1, 2), fakeVertex(1, 3)
	p := Panorama{3: c, 1: a, 2: b}

	assert.Equal(t, []idx.ValidatorID{1, 2, 3}, p.Validators())
	assert.Equal(t, hash.Vertices{a, b, c}, p.IDs())

	cp := p.Copy()
	delete(cp, 1)
	assert.Equal(t, 3, p.Len())
	id, ok := p.Get(1)
	assert.True(t, ok)
	assert.Equal(t, a, id)
}
