package pos

import (
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

type (
	// Weight amount.
	Weight uint32
)

type (
	// WeightCounter counts weights of distinct validators.
	WeightCounter struct {
		validators *Validators
		already    []bool // index of validator -> bool

		quorum Weight
		sum    Weight
	}
)

// NewCounter constructor. The quorum threshold is supplied by the caller.
func (vv *Validators) NewCounter(quorum Weight) *WeightCounter {
	return &WeightCounter{
		validators: vv,
		quorum:     quorum,
		already:    make([]bool, vv.Len()),
	}
}

// Count validator and return true if it hadn't counted before.
// Unknown validators are ignored.
func (s *WeightCounter) Count(v idx.ValidatorID) bool {
	i, ok := s.validators.index[v]
	if !ok || s.already[i] {
		return false
	}
	s.already[i] = true

	s.sum += s.validators.members[i].Weight
	return true
}

// HasQuorum achieved.
func (s *WeightCounter) HasQuorum() bool {
	return s.sum >= s.quorum
}

// Sum of counted weights.
func (s *WeightCounter) Sum() Weight {
	return s.sum
}
