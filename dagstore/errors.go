package dagstore

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/vertexdag/hash"
)

var (
	// ErrMissingDependency is matched by MissingDependencyError.
	ErrMissingDependency = errors.New("panorama refers unknown vertices")
	// ErrStorageFault is returned if the underlying DB fails. Nothing is applied in such case.
	ErrStorageFault = errors.New("storage fault")
	// ErrBatchOutOfOrder is returned if a batch doesn't follow the last finalized one.
	ErrBatchOutOfOrder = errors.New("batch index is out of order")
)

// MissingDependencyError lists the panorama entries which aren't stored yet.
type MissingDependencyError struct {
	ID      hash.Vertex
	Missing hash.Vertices
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%v: vertex %s misses %s", ErrMissingDependency, e.ID.ShortID(3), e.Missing.String())
}

func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}

func storageFault(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageFault, err)
}
