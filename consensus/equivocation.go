package consensus

import (
	"fmt"
	"sort"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// Equivocation is an evidence of two distinct vertices signed by one validator at the same position.
type Equivocation struct {
	Validator idx.ValidatorID
	Seq       idx.Seq
	First     hash.Vertex
	Second    hash.Vertex
}

func (e *Equivocation) String() string {
	return fmt.Sprintf("{validator=%d, seq=%d, %s != %s}", e.Validator, e.Seq, e.First.ShortID(3), e.Second.ShortID(3))
}

// Cheaters is a sorted list of validators caught on equivocation.
type Cheaters []idx.ValidatorID

// Set returns the cheaters as a set.
func (cc Cheaters) Set() map[idx.ValidatorID]struct{} {
	set := make(map[idx.ValidatorID]struct{}, len(cc))
	for _, c := range cc {
		set[c] = struct{}{}
	}
	return set
}

// NewCheaters makes sorted list of unique validators.
func NewCheaters(set map[idx.ValidatorID]struct{}) Cheaters {
	cc := make(Cheaters, 0, len(set))
	for c := range set {
		cc = append(cc, c)
	}
	sort.Slice(cc, func(i, j int) bool {
		return cc[i] < cc[j]
	})
	return cc
}
