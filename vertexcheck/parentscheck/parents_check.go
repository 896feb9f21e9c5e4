package parentscheck

import (
	"errors"

	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

var (
	ErrWrongSeq             = errors.New("vertex has wrong sequence number")
	ErrWrongLamport         = errors.New("vertex has wrong Lamport time")
	ErrWrongPanoramaCreator = errors.New("panorama entry is created by another validator")
)

// Checker performs checks, which require the panorama vertices
type Checker struct{}

// New checker which performs checks, which require the panorama vertices
func New() *Checker {
	return &Checker{}
}

// Validate vertex. Parents are the panorama vertices, ordered by validator.
func (v *Checker) Validate(e dag.Vertex, parents dag.Vertices) error {
	if e.Panorama().Len() != len(parents) {
		panic("parentscheck: expected vertex's panorama as an argument")
	}

	maxLamport := idx.Lamport(0)
	var selfParent dag.Vertex
	for i, w := range e.Panorama().Validators() {
		p := parents[i]
		if p.ID() != e.Panorama()[w] {
			panic("parentscheck: panorama vertices are out of order")
		}
		if p.Creator() != w {
			return ErrWrongPanoramaCreator
		}
		maxLamport = idx.MaxLamport(maxLamport, p.Lamport())
		if w == e.Creator() {
			selfParent = p
		}
	}

	if e.Lamport() != maxLamport+1 {
		return ErrWrongLamport
	}

	if selfParent == nil {
		if e.Seq() != 0 {
			return ErrWrongSeq
		}
	} else if e.Seq() != selfParent.Seq()+1 {
		return ErrWrongSeq
	}

	return nil
}
