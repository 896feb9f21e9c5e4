package tdag

import (
	"fmt"
	"math/rand"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// ForEachVertex is a set of generator callbacks.
type ForEachVertex struct {
	// Process is called for each new vertex.
	Process func(v *TestVertex, name string)
	// Build may alter the vertex before signing, a non-nil error skips the vertex.
	Build func(mv *dag.MutableBaseVertex[string], name string) error
	// Sign returns the vertex signature, FakeSignature is used if nil.
	Sign func(mv *dag.MutableBaseVertex[string]) dag.Signature
}

// GenNodes generates nodes.
// Result:
//   - nodes  is an array of validator ids;
func GenNodes(
	nodeCount int,
) (
	nodes []idx.ValidatorID,
) {
	nodes = make([]idx.ValidatorID, nodeCount)
	for i := 0; i < nodeCount; i++ {
		id := idx.ValidatorID(i + 1)
		nodes[i] = id
		hash.SetNodeName(id, "node"+string('A'+rune(i)))
	}

	return
}

// FakeSignature is a signature placeholder of the right length.
func FakeSignature(mv *dag.MutableBaseVertex[string]) dag.Signature {
	d := mv.Digest()
	sig := make(dag.Signature, 65)
	copy(sig, d[:])
	copy(sig[32:], d[:])
	return sig
}

// SignWith makes a Sign callback from the signing function of creators.
func SignWith(sign func(creator idx.ValidatorID, digest hash.Hash) ([]byte, error)) func(mv *dag.MutableBaseVertex[string]) dag.Signature {
	return func(mv *dag.MutableBaseVertex[string]) dag.Signature {
		sig, err := sign(mv.Creator(), mv.Digest())
		if err != nil {
			panic(err)
		}
		return sig
	}
}

// ForEachRandFork generates random vertices with forks for test purpose.
// Every generated vertex has a well-formed panorama: it observes the newest vertices its cited vertices observe.
// A fork vertex cites only its self-parent, or nothing for a forked genesis.
// Result:
//   - callbacks are called for each new vertex;
//   - vertices maps node to array of its vertices;
func ForEachRandFork(
	nodes []idx.ValidatorID,
	cheatersArr []idx.ValidatorID,
	vertexCount int,
	parentCount int,
	forksCount int,
	r *rand.Rand,
	callback ForEachVertex,
) (
	vertices map[idx.ValidatorID]TestVertices,
) {
	if r == nil {
		// fixed seed
		r = rand.New(rand.NewSource(0))
	}
	nodeCount := len(nodes)
	vertices = make(map[idx.ValidatorID]TestVertices, nodeCount)
	all := make(map[hash.Vertex]*TestVertex)
	cheaters := map[idx.ValidatorID]int{}
	for _, cheater := range cheatersArr {
		cheaters[cheater] = 0
	}

	isStrictSelfAncestor := func(a, b hash.Vertex) bool {
		for v := all[b]; v != nil; {
			sp := v.SelfParent()
			if sp == nil {
				return false
			}
			if *sp == a {
				return true
			}
			v = all[*sp]
		}
		return false
	}

	for i := 0; i < nodeCount*vertexCount; i++ {
		self := i % nodeCount
		creator := nodes[self]
		others := r.Perm(nodeCount)
		for j, n := range others {
			if n == self {
				others = append(others[0:j], others[j+1:]...)
				break
			}
		}
		if parentCount-1 < len(others) {
			others = others[:parentCount-1]
		}

		mv := &dag.MutableBaseVertex[string]{}
		mv.SetCreator(creator)
		mv.SetPanorama(dag.Panorama{})
		merge := func(q *TestVertex) {
			observe := func(w idx.ValidatorID, o hash.Vertex) {
				cur, ok := mv.Panorama()[w]
				if !ok || isStrictSelfAncestor(cur, o) {
					mv.Observe(w, o)
				}
			}
			for w, o := range q.Panorama() {
				observe(w, o)
			}
			observe(q.Creator(), q.ID())
		}

		var selfParent *TestVertex
		fork := false
		if vv := vertices[creator]; len(vv) > 0 {
			selfParent = vv[len(vv)-1]

			// may insert fork
			forksAlready, isCheater := cheaters[creator]
			forkPossible := len(vv) > 1
			forkLimitOk := forksAlready < forksCount
			forkFlipped := r.Intn(vertexCount) <= forksCount || i < (nodeCount-1)*vertexCount
			if isCheater && forkPossible && forkLimitOk && forkFlipped {
				selfParent = vv[r.Intn(len(vv)-1)]
				if r.Intn(len(vv)) == 0 {
					selfParent = nil
				}
				cheaters[creator]++
				fork = true
			}
		}
		if selfParent == nil {
			mv.SetSeq(0)
		} else {
			mv.SetSeq(selfParent.Seq() + 1)
			merge(selfParent)
		}
		if !fork {
			for _, other := range others {
				if vv := vertices[nodes[other]]; len(vv) > 0 {
					merge(vv[len(vv)-1])
				}
			}
		}
		mv.CalcLamport()

		name := fmt.Sprintf("%s%03d", string('a'+rune(self)), len(vertices[creator]))
		mv.SetValues([]string{name})
		if callback.Build != nil {
			err := callback.Build(mv, name)
			if err != nil {
				continue
			}
		}
		sign := FakeSignature
		if callback.Sign != nil {
			sign = callback.Sign
		}
		v := mv.Build(sign(mv))
		all[v.ID()] = v
		hash.SetVertexName(v.ID(), name)
		vertices[creator] = append(vertices[creator], v)
		if callback.Process != nil {
			callback.Process(v, name)
		}
	}

	return
}

// ForEachRandVertex generates random vertices for test purpose.
// Result:
//   - callbacks are called for each new vertex;
//   - vertices maps node to array of its vertices;
func ForEachRandVertex(
	nodes []idx.ValidatorID,
	vertexCount int,
	parentCount int,
	r *rand.Rand,
	callback ForEachVertex,
) (
	vertices map[idx.ValidatorID]TestVertices,
) {
	return ForEachRandFork(nodes, []idx.ValidatorID{}, vertexCount, parentCount, 0, r, callback)
}

// GenRandVertices generates random vertices for test purpose.
func GenRandVertices(
	nodes []idx.ValidatorID,
	vertexCount int,
	parentCount int,
	r *rand.Rand,
) (
	vertices map[idx.ValidatorID]TestVertices,
) {
	return ForEachRandVertex(nodes, vertexCount, parentCount, r, ForEachVertex{})
}
