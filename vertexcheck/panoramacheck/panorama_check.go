package panoramacheck

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

var (
	ErrStalePanorama      = errors.New("panorama is older than the one of a cited vertex")
	ErrConflictsFinalized = errors.New("vertex conflicts with finalized vertex of its creator")
)

// ConflictError is returned for a vertex which forks its creator's chain below a finalized vertex.
type ConflictError struct {
	Evidence *consensus.Equivocation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: %s", ErrConflictsFinalized, e.Evidence.String())
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflictsFinalized
}

// Reader is a read-only view of the stored creators' chains.
type Reader interface {
	// SelfAncestorAt returns the self-ancestor-or-self of id at seq, if any.
	SelfAncestorAt(id hash.Vertex, seq idx.Seq) (hash.Vertex, bool)
	// SlotVertices returns all the stored vertices of creator at seq.
	SlotVertices(creator idx.ValidatorID, seq idx.Seq) hash.Vertices
	// LastFinalized returns the finalized vertex of validator with the highest seq.
	LastFinalized(validator idx.ValidatorID) (id hash.Vertex, seq idx.Seq, ok bool)
}

// Checker performs checks of the panorama against the stored DAG
type Checker struct {
	reader Reader
}

// New checker of the panorama consistency.
func New(reader Reader) *Checker {
	return &Checker{
		reader: reader,
	}
}

func (v *Checker) isStrictSelfAncestor(a hash.Vertex, aSeq idx.Seq, b hash.Vertex) bool {
	if a == b {
		return false
	}
	anc, ok := v.reader.SelfAncestorAt(b, aSeq)
	return ok && anc == a
}

// checkStale ensures the vertex observes at least what every cited vertex observes.
// Forked observations are allowed.
func (v *Checker) checkStale(e dag.Vertex, parents dag.Vertices) error {
	seqs := make(map[idx.ValidatorID]idx.Seq, len(parents))
	for _, p := range parents {
		seqs[p.Creator()] = p.Seq()
	}
	check := func(w idx.ValidatorID, o hash.Vertex) error {
		entry, ok := e.Panorama()[w]
		if !ok {
			return ErrStalePanorama
		}
		if v.isStrictSelfAncestor(entry, seqs[w], o) {
			return ErrStalePanorama
		}
		return nil
	}
	for _, q := range parents {
		for w, o := range q.Panorama() {
			if err := check(w, o); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Checker) checkFinalized(e dag.Vertex) error {
	lf, lfSeq, ok := v.reader.LastFinalized(e.Creator())
	if !ok {
		return nil
	}
	if e.Seq() <= lfSeq {
		first, _ := v.reader.SelfAncestorAt(lf, e.Seq())
		return &ConflictError{&consensus.Equivocation{
			Validator: e.Creator(),
			Seq:       e.Seq(),
			First:     first,
			Second:    e.ID(),
		}}
	}
	// seq > lfSeq >= 0, so the self-parent exists
	anc, _ := v.reader.SelfAncestorAt(*e.SelfParent(), lfSeq)
	if anc != lf {
		return &ConflictError{&consensus.Equivocation{
			Validator: e.Creator(),
			Seq:       lfSeq,
			First:     lf,
			Second:    anc,
		}}
	}
	return nil
}

// Validate vertex. Parents are the panorama vertices.
// Returns the equivocation evidence if another vertex is already stored at the same position.
func (v *Checker) Validate(e dag.Vertex, parents dag.Vertices) (*consensus.Equivocation, error) {
	if err := v.checkStale(e, parents); err != nil {
		return nil, err
	}
	if err := v.checkFinalized(e); err != nil {
		return nil, err
	}
	for _, other := range v.reader.SlotVertices(e.Creator(), e.Seq()) {
		if other != e.ID() {
			return &consensus.Equivocation{
				Validator: e.Creator(),
				Seq:       e.Seq(),
				First:     other,
				Second:    e.ID(),
			}, nil
		}
	}
	return nil, nil
}
