package consensus

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
	"github.com/Fantom-foundation/vertexdag/inter/pos"
)

// SignatureVerifier checks vertex signatures.
type SignatureVerifier interface {
	Verify(creator idx.ValidatorID, digest hash.Hash, sig []byte) error
}

// Basic is the default Context: a strict two-thirds quorum, equivocators' support is excluded.
type Basic struct {
	validators *pos.Validators
	verifier   SignatureVerifier
	hook       func(*Equivocation)

	Log log.Logger
}

// NewBasic makes the default Context. The hook is optional.
func NewBasic(validators *pos.Validators, verifier SignatureVerifier, hook func(*Equivocation)) *Basic {
	return &Basic{
		validators: validators,
		verifier:   verifier,
		hook:       hook,
		Log:        log.New("module", "consensus"),
	}
}

func (b *Basic) Validators() *pos.Validators {
	return b.validators
}

func (b *Basic) Quorum() pos.Weight {
	return b.validators.Quorum()
}

func (b *Basic) VerifySignature(creator idx.ValidatorID, digest hash.Hash, sig []byte) error {
	return b.verifier.Verify(creator, digest, sig)
}

func (b *Basic) OnEquivocation(e *Equivocation) {
	b.Log.Warn("Equivocation", "validator", e.Validator, "seq", e.Seq, "first", e.First, "second", e.Second)
	if b.hook != nil {
		b.hook(e)
	}
}

func (b *Basic) Excluded(validator idx.ValidatorID, equivocated bool) bool {
	return equivocated
}
