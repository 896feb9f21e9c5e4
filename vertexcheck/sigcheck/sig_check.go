package sigcheck

import (
	"errors"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// SignatureLength is the length of [R || S || V] signature.
const SignatureLength = 65

var (
	ErrMalformedSignature = errors.New("vertex signature is malformed")
	ErrWrongSignature     = errors.New("vertex has wrong signature")
)

// Verifier checks signatures over vertex digests.
type Verifier interface {
	VerifySignature(creator idx.ValidatorID, digest hash.Hash, sig []byte) error
}

type Checker struct {
	verifier Verifier
}

// New checker of vertex signatures.
func New(verifier Verifier) *Checker {
	return &Checker{
		verifier: verifier,
	}
}

// Validate vertex
func (v *Checker) Validate(e dag.Vertex) error {
	sig := e.Signature()
	if len(sig) != SignatureLength || sig[SignatureLength-1] > 1 {
		return ErrMalformedSignature
	}
	if v.verifier.VerifySignature(e.Creator(), e.Digest(), sig) != nil {
		return ErrWrongSignature
	}
	return nil
}
