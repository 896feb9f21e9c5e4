package consensus

//go:generate go run github.com/golang/mock/mockgen -package=mock -destination=mock/context.go github.com/Fantom-foundation/vertexdag/consensus Context

import (
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
	"github.com/Fantom-foundation/vertexdag/inter/pos"
)

// Context binds the engine to the validator set, its keys and the finality policy.
// It is fixed for the lifetime of a consensus instance.
type Context interface {
	// Validators returns the validator set with weights.
	Validators() *pos.Validators
	// Quorum is the support weight required to finalize a vertex.
	Quorum() pos.Weight
	// VerifySignature checks sig of creator over the vertex digest.
	VerifySignature(creator idx.ValidatorID, digest hash.Hash, sig []byte) error
	// OnEquivocation is notified about every detected equivocation.
	OnEquivocation(e *Equivocation)
	// Excluded returns true if the validator's support doesn't count.
	Excluded(validator idx.ValidatorID, equivocated bool) bool
}
