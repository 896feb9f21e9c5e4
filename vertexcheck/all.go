package vertexcheck

import (
	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/vertexcheck/basiccheck"
	"github.com/Fantom-foundation/vertexdag/vertexcheck/panoramacheck"
	"github.com/Fantom-foundation/vertexdag/vertexcheck/parentscheck"
	"github.com/Fantom-foundation/vertexdag/vertexcheck/sigcheck"
)

// Checkers is collection of all the checkers
type Checkers struct {
	Basiccheck    *basiccheck.Checker
	Sigcheck      *sigcheck.Checker
	Parentscheck  *parentscheck.Checker
	Panoramacheck *panoramacheck.Checker
}

// New makes all the checkers bound to the context and the DAG reader.
func New(config basiccheck.Config, ctx consensus.Context, reader panoramacheck.Reader) *Checkers {
	return &Checkers{
		Basiccheck:    basiccheck.New(config, ctx),
		Sigcheck:      sigcheck.New(ctx),
		Parentscheck:  parentscheck.New(),
		Panoramacheck: panoramacheck.New(reader),
	}
}

// ValidateStateless runs the checks which don't require the DAG.
// It's safe to call concurrently.
func (v *Checkers) ValidateStateless(e dag.Vertex) error {
	if err := v.Basiccheck.Validate(e); err != nil {
		return Invalid(e.ID(), err)
	}
	if err := v.Sigcheck.Validate(e); err != nil {
		return Invalid(e.ID(), err)
	}
	return nil
}

// Validate runs all the checks. Parents are the panorama vertices, ordered by validator.
// An equivocation isn't an error, the evidence is returned instead.
func (v *Checkers) Validate(e dag.Vertex, parents dag.Vertices) (*consensus.Equivocation, error) {
	if err := v.ValidateStateless(e); err != nil {
		return nil, err
	}
	if err := v.Parentscheck.Validate(e, parents); err != nil {
		return nil, Invalid(e.ID(), err)
	}
	eq, err := v.Panoramacheck.Validate(e, parents)
	if err != nil {
		return nil, Invalid(e.ID(), err)
	}
	return eq, nil
}
