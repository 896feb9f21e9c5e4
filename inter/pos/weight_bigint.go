package pos

import (
	"math/big"

	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// ValidatorsBigBuilder is a helper to create Validators object out of bigint numbers,
// e.g. token balances from a genesis file.
type ValidatorsBigBuilder map[idx.ValidatorID]*big.Int

// NewBigBuilder creates new mutable ValidatorsBigBuilder
func NewBigBuilder() ValidatorsBigBuilder {
	return ValidatorsBigBuilder{}
}

// Set appends item to ValidatorsBigBuilder object
func (vv ValidatorsBigBuilder) Set(id idx.ValidatorID, weight *big.Int) {
	if weight == nil || weight.Sign() == 0 {
		delete(vv, id)
	} else {
		vv[id] = weight
	}
}

// TotalWeight of all the items.
func (vv ValidatorsBigBuilder) TotalWeight() *big.Int {
	res := new(big.Int)
	for _, w := range vv {
		res = res.Add(res, w)
	}
	return res
}

// Build new read-only Validators object.
// Weights are downscaled by 2^n so that the total fits into 30 bits.
func (vv ValidatorsBigBuilder) Build() *Validators {
	totalBits := vv.TotalWeight().BitLen()
	shift := uint(0)
	if totalBits > 30 {
		shift = uint(totalBits - 30)
	}

	builder := NewBuilder()
	for v, w := range vv {
		weight := new(big.Int).Rsh(w, shift)
		builder.Set(v, Weight(weight.Uint64()))
	}
	return builder.Build()
}
