package basiccheck

import (
	"errors"
	"math"

	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/pos"
)

var (
	ErrNotInited              = errors.New("vertex field is not initialized")
	ErrHugeValue              = errors.New("too big value")
	ErrUnknownCreator         = errors.New("vertex creator isn't a validator")
	ErrUnknownPanoramaCreator = errors.New("panorama refers a non-validator")
	ErrZeroPanoramaID         = errors.New("panorama refers an empty vertex id")
	ErrTooManyValues          = errors.New("too many values")
	ErrTooBig                 = errors.New("vertex is too big")
)

// Config of the structural limits.
type Config struct {
	MaxValues     int
	MaxVertexSize int
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{
		MaxValues:     1024,
		MaxVertexSize: 1024 * 1024,
	}
}

// Reader returns the validator set.
type Reader interface {
	Validators() *pos.Validators
}

type Checker struct {
	config Config
	reader Reader
}

// New validator which performs checks which don't require anything except vertex and validators
func New(config Config, reader Reader) *Checker {
	return &Checker{
		config: config,
		reader: reader,
	}
}

func (v *Checker) checkLimits(e dag.Vertex) error {
	if e.Seq() >= math.MaxInt32-1 || e.Lamport() >= math.MaxInt32-1 {
		return ErrHugeValue
	}
	if e.ValuesNum() > v.config.MaxValues {
		return ErrTooManyValues
	}
	if e.Size() > v.config.MaxVertexSize {
		return ErrTooBig
	}
	return nil
}

func (v *Checker) checkInited(e dag.Vertex) error {
	if e.Lamport() == 0 {
		return ErrNotInited
	}
	return nil
}

func (v *Checker) checkAuth(e dag.Vertex) error {
	validators := v.reader.Validators()
	if !validators.Exists(e.Creator()) {
		return ErrUnknownCreator
	}
	for w, id := range e.Panorama() {
		if !validators.Exists(w) {
			return ErrUnknownPanoramaCreator
		}
		if id.IsZero() {
			return ErrZeroPanoramaID
		}
	}
	return nil
}

// Validate vertex
func (v *Checker) Validate(e dag.Vertex) error {
	if err := v.checkLimits(e); err != nil {
		return err
	}
	if err := v.checkInited(e); err != nil {
		return err
	}
	return v.checkAuth(e)
}
