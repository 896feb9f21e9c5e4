package consensus

import (
	"fmt"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// Batch is a group of vertices finalized together.
type Batch[C any] struct {
	Index idx.Batch
	// Anchor is the highest finalized vertex of the batch.
	Anchor hash.Vertex
	// Vertices are ordered causally.
	Vertices hash.Vertices
	// Values of the vertices, in the order of the vertices.
	Values []C
	// Cheaters known at the moment of finalization.
	Cheaters Cheaters
}

func (b *Batch[C]) String() string {
	return fmt.Sprintf("{index=%d, anchor=%s, vertices=%d, values=%d, cheaters=%v}", b.Index, b.Anchor.ShortID(3), len(b.Vertices), len(b.Values), b.Cheaters)
}
