package dagstore

import (
	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// IsCheater returns true if the validator is caught on equivocation.
func (s *Store[C]) IsCheater(validator idx.ValidatorID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.cheaters[validator]
	return ok
}

// Cheaters returns all the validators caught on equivocation.
func (s *Store[C]) Cheaters() consensus.Cheaters {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(map[idx.ValidatorID]struct{}, len(s.cheaters))
	for v := range s.cheaters {
		set[v] = struct{}{}
	}
	return consensus.NewCheaters(set)
}

// Evidence returns the first equivocation of the validator.
func (s *Store[C]) Evidence(validator idx.ValidatorID) *consensus.Equivocation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cheaters[validator]
}

// LastEquivocation returns the equivocation detected by the last AddVertex call, if any.
func (s *Store[C]) LastEquivocation() *consensus.Equivocation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastEquivocation
}
