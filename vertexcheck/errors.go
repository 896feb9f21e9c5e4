package vertexcheck

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/vertexdag/hash"
)

var (
	// ErrInvalidVertex is matched by every rejection of the checkers.
	ErrInvalidVertex = errors.New("invalid vertex")

	// ErrAlreadyConnected releases a buffered vertex which is stored by another submission.
	ErrAlreadyConnected = errors.New("vertex is connected already")
	ErrSpilledVertex    = errors.New("vertex is spilled")
)

// InvalidVertexError is a permanent rejection of the vertex.
type InvalidVertexError struct {
	ID  hash.Vertex
	Err error
}

// Invalid wraps the checker error.
func Invalid(id hash.Vertex, err error) error {
	return &InvalidVertexError{
		ID:  id,
		Err: err,
	}
}

func (e *InvalidVertexError) Error() string {
	return fmt.Sprintf("invalid vertex %s: %v", e.ID.ShortID(3), e.Err)
}

func (e *InvalidVertexError) Unwrap() error {
	return e.Err
}

func (e *InvalidVertexError) Is(target error) bool {
	return target == ErrInvalidVertex
}

// IsBan returns true if the peer which sent the vertex should be banned.
func IsBan(err error) bool {
	return errors.Is(err, ErrInvalidVertex)
}
