package pos

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

type (
	// member is also the RLP form of a validator.
	member struct {
		ID     idx.ValidatorID
		Weight Weight
	}

	// Validators is a fixed weighted validator set. Members are ordered
	// by weight descending, then by ID, so every node iterates them alike.
	// Read-only.
	Validators struct {
		members []member
		index   map[idx.ValidatorID]int
		total   Weight
	}

	// ValidatorsBuilder collects weights before the set is frozen by Build.
	ValidatorsBuilder map[idx.ValidatorID]Weight
)

func NewBuilder() ValidatorsBuilder {
	return ValidatorsBuilder{}
}

// Set the validator weight. Zero weight removes the validator.
func (b ValidatorsBuilder) Set(id idx.ValidatorID, weight Weight) {
	if weight == 0 {
		delete(b, id)
		return
	}
	b[id] = weight
}

// Build freezes the set. It panics if the total weight exceeds MaxUint32/2,
// a bound which keeps quorum arithmetic free of overflow.
func (b ValidatorsBuilder) Build() *Validators {
	mm := make([]member, 0, len(b))
	for id, w := range b {
		mm = append(mm, member{ID: id, Weight: w})
	}
	return newValidators(mm)
}

// EqualWeightValidators builds a set where everyone has the same weight.
func EqualWeightValidators(ids []idx.ValidatorID, weight Weight) *Validators {
	b := NewBuilder()
	for _, id := range ids {
		b.Set(id, weight)
	}
	return b.Build()
}

// ArrayToValidators builds a set from parallel slices of ids and weights.
func ArrayToValidators(ids []idx.ValidatorID, weights []Weight) *Validators {
	b := NewBuilder()
	for i, id := range ids {
		b.Set(id, weights[i])
	}
	return b.Build()
}

func newValidators(mm []member) *Validators {
	sort.Slice(mm, func(i, j int) bool {
		if mm[i].Weight != mm[j].Weight {
			return mm[i].Weight > mm[j].Weight
		}
		return mm[i].ID < mm[j].ID
	})

	vv := &Validators{
		members: mm,
		index:   make(map[idx.ValidatorID]int, len(mm)),
	}
	var total uint64
	for i, m := range mm {
		vv.index[m.ID] = i
		total += uint64(m.Weight)
	}
	if total > math.MaxUint32/2 {
		panic("validators weight overflow")
	}
	vv.total = Weight(total)
	return vv
}

func (vv *Validators) Len() int {
	return len(vv.members)
}

// Get returns the validator weight, zero for a stranger.
func (vv *Validators) Get(id idx.ValidatorID) Weight {
	if i, ok := vv.index[id]; ok {
		return vv.members[i].Weight
	}
	return 0
}

func (vv *Validators) Exists(id idx.ValidatorID) bool {
	_, ok := vv.index[id]
	return ok
}

// SortedIDs returns ids in the set order.
func (vv *Validators) SortedIDs() []idx.ValidatorID {
	ids := make([]idx.ValidatorID, len(vv.members))
	for i, m := range vv.members {
		ids[i] = m.ID
	}
	return ids
}

// SortedWeights returns weights in the SortedIDs order.
func (vv *Validators) SortedWeights() []Weight {
	ww := make([]Weight, len(vv.members))
	for i, m := range vv.members {
		ww[i] = m.Weight
	}
	return ww
}

func (vv *Validators) Copy() *Validators {
	return newValidators(append([]member(nil), vv.members...))
}

// Quorum is a strict two-thirds majority of the total weight.
func (vv *Validators) Quorum() Weight {
	return vv.total*2/3 + 1
}

func (vv *Validators) TotalWeight() Weight {
	return vv.total
}

// EncodeRLP writes the members in the set order.
func (vv *Validators) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, vv.members)
}

// DecodeRLP rebuilds the set, restoring its order and caches.
func (vv *Validators) DecodeRLP(s *rlp.Stream) error {
	var mm []member
	if err := s.Decode(&mm); err != nil {
		return err
	}
	b := NewBuilder()
	for _, m := range mm {
		b.Set(m.ID, m.Weight)
	}
	*vv = *b.Build()
	return nil
}

func (vv *Validators) String() string {
	ss := make([]string, 0, len(vv.members))
	for _, m := range vv.members {
		ss = append(ss, fmt.Sprintf("[%d:%d]", m.ID, m.Weight))
	}
	return strings.Join(ss, ",")
}
