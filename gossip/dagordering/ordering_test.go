package dagordering

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/vertexdag/dagstore"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/dag/tdag"
	"github.com/Fantom-foundation/vertexdag/vertexcheck"
)

type testDAG struct {
	processed map[hash.Vertex]*tdag.TestVertex
	released  map[hash.Vertex]error
	fail      func(v *tdag.TestVertex) error
	// failStored fails after the vertex is stored
	failStored func(v *tdag.TestVertex) error
}

func newTestDAG() *testDAG {
	return &testDAG{
		processed: make(map[hash.Vertex]*tdag.TestVertex),
		released:  make(map[hash.Vertex]error),
	}
}

func (d *testDAG) callback(t *testing.T) Callback[string] {
	return Callback[string]{
		Process: func(v *tdag.TestVertex) error {
			if _, ok := d.processed[v.ID()]; ok {
				t.Fatalf("%s already processed", v.String())
			}
			for _, p := range v.Panorama().IDs() {
				if _, ok := d.processed[p]; !ok {
					t.Fatalf("got %s before parent %s", v.String(), p.String())
				}
			}
			if d.fail != nil {
				if err := d.fail(v); err != nil {
					return err
				}
			}
			d.processed[v.ID()] = v
			if d.failStored != nil {
				return d.failStored(v)
			}
			return nil
		},
		Released: func(v *tdag.TestVertex, peer string, err error) {
			d.released[v.ID()] = err
		},
		Exists: func(id hash.Vertex) bool {
			return d.processed[id] != nil
		},
	}
}

func TestBufferOrdering(t *testing.T) {
	for try := int64(0); try < 100; try++ {
		testBufferOrdering(t, try)
	}
}

func testBufferOrdering(t *testing.T, try int64) {
	require := require.New(t)
	nodes := tdag.GenNodes(5)
	r := rand.New(rand.NewSource(try))
	ordered := tdag.Flatten(tdag.GenRandVertices(nodes, 10, 3, r))

	d := newTestDAG()
	buffer := New(Config{Limit: ordered.Dag().Metric()}, d.callback(t))

	for _, i := range r.Perm(len(ordered)) {
		v := ordered[i]
		res, err := buffer.Submit(v, "peer")
		require.NoError(err)
		switch res.Outcome {
		case Pending:
			require.NotEmpty(res.Missing)
			require.True(buffer.IsBuffered(v.ID()))
		case Inserted:
			require.Empty(res.Missing)
			require.Contains(d.processed, v.ID())
		case Duplicate:
			t.Fatalf("%s isn't submitted twice", v.String())
		}
	}

	// everything is processed
	require.Len(d.processed, len(ordered))
	require.Empty(d.released)
	require.Zero(buffer.Len())
	require.Empty(buffer.Missing())
}

func TestBufferDuplicate(t *testing.T) {
	require := require.New(t)
	nodes := tdag.GenNodes(2)
	ordered := tdag.Flatten(tdag.GenRandVertices(nodes, 2, 2, nil)).ByID()

	d := newTestDAG()
	buffer := New(LiteConfig(), d.callback(t))

	last := ordered[len(ordered)-1]
	res, err := buffer.Submit(last, "a")
	require.NoError(err)
	require.Equal(Pending, res.Outcome)
	// pending at most once
	res, err = buffer.Submit(last, "b")
	require.NoError(err)
	require.Equal(Pending, res.Outcome)
	require.Equal(1, buffer.Len())

	for _, v := range ordered {
		_, err := buffer.Submit(v, "a")
		require.NoError(err)
	}
	require.Len(d.processed, len(ordered))

	res, err = buffer.Submit(ordered[0], "a")
	require.NoError(err)
	require.Equal(Duplicate, res.Outcome)
	require.Zero(buffer.Len())
}

func TestBufferMissing(t *testing.T) {
	require := require.New(t)
	nodes := tdag.GenNodes(3)
	ordered := tdag.Flatten(tdag.GenRandVertices(nodes, 3, 3, nil)).ByID()

	d := newTestDAG()
	buffer := New(LiteConfig(), d.callback(t))

	last := ordered[len(ordered)-1]
	res, err := buffer.Submit(last, "")
	require.NoError(err)
	require.Equal(Pending, res.Outcome)
	require.Equal(last.Panorama().IDs().Set(), res.Missing.Set())
	require.Equal(res.Missing, buffer.Missing())
	require.True(buffer.IsBuffered(last.ID()))

	buffer.Clear()
	require.False(buffer.IsBuffered(last.ID()))
	require.Empty(buffer.Missing())
	require.Zero(buffer.Len())
	require.Empty(d.released)
}

func TestBufferReleasesInvalid(t *testing.T) {
	require := require.New(t)

	mv := &dag.MutableBaseVertex[string]{}
	mv.SetCreator(1)
	mv.CalcLamport()
	parent := mv.Build(tdag.FakeSignature(mv))

	mv = &dag.MutableBaseVertex[string]{}
	mv.SetCreator(1)
	mv.SetSeq(1)
	mv.SetPanorama(dag.Panorama{1: parent.ID()})
	mv.CalcLamport()
	child := mv.Build(tdag.FakeSignature(mv))

	mv.SetValues([]string{"other"})
	sibling := mv.Build(tdag.FakeSignature(mv))

	d := newTestDAG()
	invalid := vertexcheck.Invalid(child.ID(), errors.New("testing error"))
	d.fail = func(v *tdag.TestVertex) error {
		if v.ID() == child.ID() {
			return invalid
		}
		return nil
	}
	buffer := New(LiteConfig(), d.callback(t))

	for _, v := range []*tdag.TestVertex{child, sibling} {
		res, err := buffer.Submit(v, "peer")
		require.NoError(err)
		require.Equal(Pending, res.Outcome)
	}

	// the failure of a buffered vertex doesn't fail the call
	res, err := buffer.Submit(parent, "peer")
	require.NoError(err)
	require.Equal(Inserted, res.Outcome)
	require.Equal(map[hash.Vertex]error{child.ID(): invalid}, d.released)
	require.Contains(d.processed, sibling.ID())
	require.Zero(buffer.Len())

	// the failure of the submitted vertex is returned
	_, err = buffer.Submit(child, "peer")
	require.ErrorIs(err, vertexcheck.ErrInvalidVertex)
}

func TestBufferSpill(t *testing.T) {
	require := require.New(t)
	nodes := tdag.GenNodes(3)
	ordered := tdag.Flatten(tdag.GenRandVertices(nodes, 5, 3, nil)).ByID()

	d := newTestDAG()
	buffer := New(Config{Limit: dag.Metric{Num: 2, Size: 1 << 20}}, d.callback(t))

	// none of them is complete
	orphans := ordered[len(ordered)-3:]
	for _, v := range orphans {
		_, err := buffer.Submit(v, "peer")
		require.NoError(err)
	}
	require.Equal(2, buffer.Len())
	require.Len(d.released, 1)
	require.ErrorIs(d.released[orphans[0].ID()], vertexcheck.ErrSpilledVertex)
	require.False(buffer.IsBuffered(orphans[0].ID()))
	require.True(buffer.IsBuffered(orphans[1].ID()))
}

func TestBufferStorageFault(t *testing.T) {
	require := require.New(t)
	nodes := tdag.GenNodes(3)
	ordered := tdag.Flatten(tdag.GenRandVertices(nodes, 3, 3, nil)).ByID()

	d := newTestDAG()
	faulty := true
	d.fail = func(v *tdag.TestVertex) error {
		if faulty && v.ID() == ordered[len(ordered)-1].ID() {
			return fmt.Errorf("%w: disk is full", dagstore.ErrStorageFault)
		}
		return nil
	}
	buffer := New(LiteConfig(), d.callback(t))

	// reversed order, so the cascade runs on the last submission
	var err error
	for i := len(ordered) - 1; i >= 0; i-- {
		_, err = buffer.Submit(ordered[i], "peer")
		if i != 0 {
			require.NoError(err)
		}
	}
	require.ErrorIs(err, dagstore.ErrStorageFault)
	require.Len(d.processed, len(ordered)-1)
	require.True(buffer.IsBuffered(ordered[len(ordered)-1].ID()))
	require.Empty(d.released)

	faulty = false
	require.NoError(buffer.Retry())
	require.Len(d.processed, len(ordered))
	require.Zero(buffer.Len())
}

func TestBufferFaultAfterStore(t *testing.T) {
	require := require.New(t)
	nodes := tdag.GenNodes(3)
	ordered := tdag.Flatten(tdag.GenRandVertices(nodes, 4, 3, nil)).ByID()
	parent := ordered[0]

	d := newTestDAG()
	d.failStored = func(v *tdag.TestVertex) error {
		if v.ID() == parent.ID() {
			return fmt.Errorf("%w: finality batch", dagstore.ErrStorageFault)
		}
		return nil
	}
	buffer := New(LiteConfig(), d.callback(t))

	for _, v := range ordered[1:] {
		_, err := buffer.Submit(v, "peer")
		require.NoError(err)
	}
	require.NotZero(buffer.Len())

	// the parent is stored, so its waiters go on despite the fault
	res, err := buffer.Submit(parent, "peer")
	require.ErrorIs(err, dagstore.ErrStorageFault)
	require.Equal(Inserted, res.Outcome)
	require.Len(d.processed, len(ordered))
	require.Zero(buffer.Len())
	require.Empty(buffer.Missing())
	require.Empty(d.released)
}

func TestBufferFaultInCascade(t *testing.T) {
	require := require.New(t)
	nodes := tdag.GenNodes(3)
	ordered := tdag.Flatten(tdag.GenRandVertices(nodes, 4, 3, nil)).ByID()
	// the first vertex which cites the first one
	var second *tdag.TestVertex
	for _, v := range ordered[1:] {
		for _, p := range v.Panorama().IDs() {
			if second == nil && p == ordered[0].ID() {
				second = v
			}
		}
	}
	require.NotNil(second)

	d := newTestDAG()
	faulty := true
	d.failStored = func(v *tdag.TestVertex) error {
		if faulty && v.ID() == second.ID() {
			return fmt.Errorf("%w: finality batch", dagstore.ErrStorageFault)
		}
		return nil
	}
	buffer := New(LiteConfig(), d.callback(t))

	for i := len(ordered) - 1; i > 0; i-- {
		_, err := buffer.Submit(ordered[i], "peer")
		require.NoError(err)
	}
	_, err := buffer.Submit(ordered[0], "peer")
	require.ErrorIs(err, dagstore.ErrStorageFault)
	require.False(buffer.IsBuffered(second.ID()))

	faulty = false
	require.NoError(buffer.Retry())
	require.Len(d.processed, len(ordered))
	require.Zero(buffer.Len())
	require.Empty(d.released)
}

func TestBufferReadyStoredElsewhere(t *testing.T) {
	require := require.New(t)
	nodes := tdag.GenNodes(3)
	ordered := tdag.Flatten(tdag.GenRandVertices(nodes, 3, 3, nil)).ByID()
	last := ordered[len(ordered)-1]

	d := newTestDAG()
	faulty := true
	d.fail = func(v *tdag.TestVertex) error {
		if faulty && v.ID() == last.ID() {
			return fmt.Errorf("%w: disk is full", dagstore.ErrStorageFault)
		}
		return nil
	}
	buffer := New(LiteConfig(), d.callback(t))
	for i := len(ordered) - 1; i > 0; i-- {
		_, err := buffer.Submit(ordered[i], "peer")
		require.NoError(err)
	}
	_, err := buffer.Submit(ordered[0], "peer")
	require.ErrorIs(err, dagstore.ErrStorageFault)
	require.True(buffer.IsBuffered(last.ID()))

	// stored by another path while it waits in the ready queue
	faulty = false
	d.processed[last.ID()] = last
	require.NoError(buffer.Retry())
	require.Zero(buffer.Len())
	require.ErrorIs(d.released[last.ID()], vertexcheck.ErrAlreadyConnected)
	require.False(vertexcheck.IsBan(d.released[last.ID()]))
}
