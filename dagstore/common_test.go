package dagstore

import (
	"math/rand"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/consensus/keys"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/dag/tdag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
	"github.com/Fantom-foundation/vertexdag/inter/pos"
)

type testEnv struct {
	nodes []idx.ValidatorID
	kr    *keys.Keyring
	ctx   *consensus.Basic
}

func newTestEnv(nodeCount int) *testEnv {
	nodes := tdag.GenNodes(nodeCount)
	kr := keys.FakeKeyring(nodes...)
	return &testEnv{
		nodes: nodes,
		kr:    kr,
		ctx:   consensus.NewBasic(pos.EqualWeightValidators(nodes, 1), kr.PubKeys(), nil),
	}
}

// genDAG generates signed vertices sorted by id.
func (env *testEnv) genDAG(cheaters []idx.ValidatorID, vertexCount int, seed int64) tdag.TestVertices {
	vertices := tdag.ForEachRandFork(env.nodes, cheaters, vertexCount, len(env.nodes), 2, rand.New(rand.NewSource(seed)), tdag.ForEachVertex{
		Sign: tdag.SignWith(env.kr.Sign),
	})
	return tdag.Flatten(vertices).ByID()
}

func (env *testEnv) build(creator idx.ValidatorID, seq idx.Seq, p dag.Panorama, values ...string) *tdag.TestVertex {
	mv := &dag.MutableBaseVertex[string]{}
	mv.SetCreator(creator)
	mv.SetSeq(seq)
	mv.SetPanorama(p)
	mv.SetValues(values)
	mv.CalcLamport()
	return mv.Build(tdag.SignWith(env.kr.Sign)(mv))
}
