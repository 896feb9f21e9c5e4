package pos

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

func TestNewValidators(t *testing.T) {
	b := NewBuilder()

	assert.NotNil(t, b)
	assert.NotNil(t, b.Build())

	assert.Equal(t, 0, b.Build().Len())
}

func TestValidators_Set(t *testing.T) {
	b := NewBuilder()

	b.Set(1, 1)
	b.Set(2, 2)
	b.Set(3, 3)
	b.Set(4, 4)
	b.Set(5, 5)

	v := b.Build()

	assert.Equal(t, 5, v.Len())
	assert.Equal(t, Weight(15), v.TotalWeight())

	b.Set(1, 10)
	b.Set(3, 30)

	v = b.Build()

	assert.Equal(t, 5, v.Len())
	assert.Equal(t, Weight(51), v.TotalWeight())

	b.Set(2, 0)
	b.Set(5, 0)

	v = b.Build()

	assert.Equal(t, 3, v.Len())
	assert.Equal(t, Weight(44), v.TotalWeight())
}

func TestValidators_Get(t *testing.T) {
	b := NewBuilder()

	b.Set(0, 1)
	b.Set(2, 2)
	b.Set(7, 5)

	v := b.Build()

	assert.Equal(t, Weight(1), v.Get(0))
	assert.Equal(t, Weight(0), v.Get(1))
	assert.Equal(t, Weight(2), v.Get(2))
	assert.Equal(t, Weight(5), v.Get(7))
	assert.True(t, v.Exists(7))
	assert.False(t, v.Exists(1))
}

func TestValidators_SortedIDs(t *testing.T) {
	v := ArrayToValidators(
		[]idx.ValidatorID{4, 1, 3, 2},
		[]Weight{1, 5, 1, 5},
	)
	assert.Equal(t, []idx.ValidatorID{1, 2, 3, 4}, v.SortedIDs())
	assert.Equal(t, []Weight{5, 5, 1, 1}, v.SortedWeights())
	assert.Equal(t, "[1:5],[2:5],[3:1],[4:1]", v.String())
}

func TestValidators_Quorum(t *testing.T) {
	for total, quorum := range map[Weight]Weight{
		1:   1,
		3:   3,
		4:   3,
		6:   5,
		100: 67,
	} {
		v := EqualWeightValidators([]idx.ValidatorID{1}, total)
		assert.Equal(t, quorum, v.Quorum(), total)
	}
}

func TestValidators_Copy(t *testing.T) {
	b := NewBuilder()

	b.Set(1, 1)
	b.Set(2, 2)

	v := b.Build()
	vv := v.Copy()

	assert.Equal(t, v.String(), vv.String())
	assert.Equal(t, v.TotalWeight(), vv.TotalWeight())

	vv.members[0].Weight = 100
	assert.Equal(t, Weight(2), v.Get(2))
}

func TestValidators_RLP(t *testing.T) {
	v := ArrayToValidators([]idx.ValidatorID{1, 2, 3}, []Weight{10, 20, 30})

	b, err := rlp.EncodeToBytes(v)
	require.NoError(t, err)

	got := &Validators{}
	require.NoError(t, rlp.DecodeBytes(b, got))
	assert.Equal(t, v.String(), got.String())
	assert.Equal(t, v.TotalWeight(), got.TotalWeight())
}

func TestWeightCounter(t *testing.T) {
	v := EqualWeightValidators([]idx.ValidatorID{1, 2, 3}, 1)
	c := v.NewCounter(v.Quorum())

	assert.True(t, c.Count(1))
	assert.False(t, c.Count(1))
	assert.False(t, c.Count(42))
	assert.False(t, c.HasQuorum())
	assert.True(t, c.Count(2))
	assert.False(t, c.HasQuorum())
	assert.True(t, c.Count(3))
	assert.True(t, c.HasQuorum())
	assert.Equal(t, Weight(3), c.Sum())
}

func TestValidators_Big(t *testing.T) {
	b := NewBigBuilder()

	b.Set(1, big.NewInt(1))
	v := b.Build()
	assert.Equal(t, Weight(1), v.TotalWeight())

	// 2^40 + 2^40 is downscaled to fit 30 bits
	b.Set(1, new(big.Int).Lsh(big.NewInt(1), 40))
	b.Set(2, new(big.Int).Lsh(big.NewInt(1), 40))
	v = b.Build()
	assert.Equal(t, Weight(1<<28), v.Get(1))
	assert.Equal(t, Weight(1<<28), v.Get(2))
	assert.Equal(t, Weight(1<<29), v.TotalWeight())

	b.Set(2, nil)
	v = b.Build()
	assert.Equal(t, 1, v.Len())
}
