package finality

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/consensus/keys"
	"github.com/Fantom-foundation/vertexdag/dagstore"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/dag/tdag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
	"github.com/Fantom-foundation/vertexdag/inter/pos"
	"github.com/Fantom-foundation/vertexdag/kvdb"
	"github.com/Fantom-foundation/vertexdag/kvdb/memorydb"
	"github.com/Fantom-foundation/vertexdag/vertexcheck"
)

type testNode struct {
	nodes []idx.ValidatorID
	kr    *keys.Keyring
	ctx   consensus.Context
	db    kvdb.Store
	store *dagstore.Store[string]
	*Detector[string]

	batches []*consensus.Batch[string]
}

func newTestNode(t *testing.T, nodeCount int) *testNode {
	nodes := tdag.GenNodes(nodeCount)
	kr := keys.FakeKeyring(nodes...)
	ctx := consensus.NewBasic(pos.EqualWeightValidators(nodes, 1), kr.PubKeys(), nil)
	return newTestNodeWith(t, nodes, kr, ctx)
}

func newTestNodeWith(t *testing.T, nodes []idx.ValidatorID, kr *keys.Keyring, ctx consensus.Context) *testNode {
	db := memorydb.New()
	store, err := dagstore.New[string](db, ctx, dagstore.LiteConfig())
	require.NoError(t, err)
	return &testNode{
		nodes:    nodes,
		kr:       kr,
		ctx:      ctx,
		db:       db,
		store:    store,
		Detector: New(store, ctx),
	}
}

// reopen makes a new instance over the same DB.
func (l *testNode) reopen(t *testing.T) *testNode {
	store, err := dagstore.New[string](l.db, l.ctx, dagstore.LiteConfig())
	require.NoError(t, err)
	return &testNode{
		nodes:    l.nodes,
		kr:       l.kr,
		ctx:      l.ctx,
		db:       l.db,
		store:    store,
		Detector: New(store, l.ctx),
	}
}

// insert returns false if the vertex is refused.
func (l *testNode) insert(t *testing.T, v *dag.BaseVertex[string]) bool {
	id, err := l.store.AddVertex(v)
	if err != nil {
		require.True(t, vertexcheck.IsBan(err) || errors.Is(err, dagstore.ErrMissingDependency), err)
		return false
	}
	require.NotNil(t, id)
	b, err := l.ProcessVertex(*id)
	require.NoError(t, err)
	if b != nil {
		l.batches = append(l.batches, b)
	}
	return true
}

func (l *testNode) build(creator idx.ValidatorID, seq idx.Seq, p dag.Panorama, values ...string) *dag.BaseVertex[string] {
	mv := &dag.MutableBaseVertex[string]{}
	mv.SetCreator(creator)
	mv.SetSeq(seq)
	mv.SetPanorama(p)
	mv.SetValues(values)
	mv.CalcLamport()
	return mv.Build(tdag.SignWith(l.kr.Sign)(mv))
}

func (l *testNode) genDAG(cheaters []idx.ValidatorID, vertexCount int, seed int64) tdag.TestVertices {
	vertices := tdag.ForEachRandFork(l.nodes, cheaters, vertexCount, len(l.nodes), 3, rand.New(rand.NewSource(seed)), tdag.ForEachVertex{
		Sign: tdag.SignWith(l.kr.Sign),
	})
	return tdag.Flatten(vertices).ByID()
}

// checkBatches verifies the invariants of the finalized batches.
func (l *testNode) checkBatches(t *testing.T) {
	require := require.New(t)

	finalized := map[hash.Vertex]idx.Batch{}
	slots := map[idx.ValidatorID]map[idx.Seq]hash.Vertex{}
	for i, b := range l.batches {
		require.Equal(idx.Batch(i+1), b.Index)
		require.NotEmpty(b.Vertices)
		require.Equal(b.Vertices[len(b.Vertices)-1], b.Anchor)

		var values []string
		for j, id := range b.Vertices {
			if j > 0 {
				require.True(b.Vertices[j-1].Less(id), "vertices are in id order")
			}
			_, already := finalized[id]
			require.False(already, "%s is finalized twice", id)
			finalized[id] = b.Index

			v, err := l.store.GetVertex(id)
			require.NoError(err)
			values = append(values, v.Values()...)

			if slots[v.Creator()] == nil {
				slots[v.Creator()] = map[idx.Seq]hash.Vertex{}
			}
			_, forked := slots[v.Creator()][v.Seq()]
			require.False(forked, "slot of %s is finalized twice", id)
			slots[v.Creator()][v.Seq()] = id

			// the creator's chain is finalized in order
			if sp := v.SelfParent(); sp != nil {
				n, ok := finalized[*sp]
				require.True(ok)
				require.LessOrEqual(n, b.Index)
			}
		}
		require.Equal(len(values), len(b.Values))
		if len(values) != 0 {
			require.Equal(values, b.Values)
		}
	}
}
