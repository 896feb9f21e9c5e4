package vertexcheck

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/vertexdag/consensus"
	"github.com/Fantom-foundation/vertexdag/consensus/keys"
	"github.com/Fantom-foundation/vertexdag/consensus/mock"
	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/dag"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
	"github.com/Fantom-foundation/vertexdag/inter/pos"
	"github.com/Fantom-foundation/vertexdag/vertexcheck/basiccheck"
	"github.com/Fantom-foundation/vertexdag/vertexcheck/panoramacheck"
	"github.com/Fantom-foundation/vertexdag/vertexcheck/parentscheck"
	"github.com/Fantom-foundation/vertexdag/vertexcheck/sigcheck"
)

type testReader struct {
	byID      map[hash.Vertex]dag.Vertex
	finalized map[idx.ValidatorID]dag.Vertex
}

func newTestReader() *testReader {
	return &testReader{
		byID:      map[hash.Vertex]dag.Vertex{},
		finalized: map[idx.ValidatorID]dag.Vertex{},
	}
}

func (r *testReader) add(vv ...dag.Vertex) {
	for _, v := range vv {
		r.byID[v.ID()] = v
	}
}

func (r *testReader) SelfAncestorAt(id hash.Vertex, seq idx.Seq) (hash.Vertex, bool) {
	for v := r.byID[id]; v != nil; {
		if v.Seq() == seq {
			return v.ID(), true
		}
		if v.Seq() < seq || v.SelfParent() == nil {
			break
		}
		v = r.byID[*v.SelfParent()]
	}
	return hash.ZeroVertex, false
}

func (r *testReader) SlotVertices(creator idx.ValidatorID, seq idx.Seq) hash.Vertices {
	var res hash.Vertices
	for id, v := range r.byID {
		if v.Creator() == creator && v.Seq() == seq {
			res.Add(id)
		}
	}
	res.Sort()
	return res
}

func (r *testReader) LastFinalized(validator idx.ValidatorID) (hash.Vertex, idx.Seq, bool) {
	v, ok := r.finalized[validator]
	if !ok {
		return hash.ZeroVertex, 0, false
	}
	return v.ID(), v.Seq(), true
}

func (r *testReader) parents(v dag.Vertex) dag.Vertices {
	var pp dag.Vertices
	for _, id := range v.Panorama().IDs() {
		pp = append(pp, r.byID[id])
	}
	return pp
}

type testEnv struct {
	kr       *keys.Keyring
	reader   *testReader
	checkers *Checkers
}

func newTestEnv() *testEnv {
	ids := []idx.ValidatorID{1, 2, 3}
	kr := keys.FakeKeyring(ids...)
	reader := newTestReader()
	ctx := consensus.NewBasic(pos.EqualWeightValidators(ids, 1), kr.PubKeys(), nil)
	return &testEnv{
		kr:       kr,
		reader:   reader,
		checkers: New(basiccheck.DefaultConfig(), ctx, reader),
	}
}

func (env *testEnv) build(creator idx.ValidatorID, seq idx.Seq, p dag.Panorama, values ...string) *dag.BaseVertex[string] {
	mv := &dag.MutableBaseVertex[string]{}
	mv.SetCreator(creator)
	mv.SetSeq(seq)
	mv.SetPanorama(p)
	mv.SetValues(values)
	mv.CalcLamport()
	return env.sign(mv, creator)
}

func (env *testEnv) sign(mv *dag.MutableBaseVertex[string], signer idx.ValidatorID) *dag.BaseVertex[string] {
	sig, err := env.kr.Sign(signer, mv.Digest())
	if err != nil {
		panic(err)
	}
	return mv.Build(sig)
}

func (env *testEnv) validate(v dag.Vertex) (*consensus.Equivocation, error) {
	return env.checkers.Validate(v, env.reader.parents(v))
}

func requireInvalid(t *testing.T, err error, cause error) {
	require.ErrorIs(t, err, ErrInvalidVertex)
	require.ErrorIs(t, err, cause)
	require.True(t, IsBan(err))
}

func TestValidChain(t *testing.T) {
	require := require.New(t)
	env := newTestEnv()

	a0 := env.build(1, 0, nil, "x")
	b0 := env.build(2, 0, nil)
	for _, v := range []dag.Vertex{a0, b0} {
		eq, err := env.validate(v)
		require.NoError(err)
		require.Nil(eq)
	}
	env.reader.add(a0, b0)

	a1 := env.build(1, 1, dag.Panorama{1: a0.ID(), 2: b0.ID()})
	eq, err := env.validate(a1)
	require.NoError(err)
	require.Nil(eq)
}

func TestSequenceChecks(t *testing.T) {
	env := newTestEnv()
	a0 := env.build(1, 0, nil)
	b0 := env.build(2, 0, nil)
	env.reader.add(a0, b0)

	_, err := env.validate(env.build(1, 2, dag.Panorama{1: a0.ID()}))
	requireInvalid(t, err, parentscheck.ErrWrongSeq)

	_, err = env.validate(env.build(1, 1, dag.Panorama{2: b0.ID()}))
	requireInvalid(t, err, parentscheck.ErrWrongSeq)

	// panorama entry keyed by a wrong validator
	_, err = env.validate(env.build(3, 0, dag.Panorama{1: b0.ID()}))
	requireInvalid(t, err, parentscheck.ErrWrongPanoramaCreator)

	mv := &dag.MutableBaseVertex[string]{}
	mv.SetCreator(1)
	mv.SetSeq(1)
	mv.SetPanorama(dag.Panorama{1: a0.ID()})
	mv.SetLamport(5)
	_, err = env.validate(env.sign(mv, 1))
	requireInvalid(t, err, parentscheck.ErrWrongLamport)
}

func TestBasicChecks(t *testing.T) {
	env := newTestEnv()

	mv := &dag.MutableBaseVertex[string]{}
	mv.SetCreator(9)
	mv.CalcLamport()
	_, err := env.validate(env.sign(mv, 1))
	requireInvalid(t, err, basiccheck.ErrUnknownCreator)

	mv = &dag.MutableBaseVertex[string]{}
	mv.SetCreator(1)
	_, err = env.validate(env.sign(mv, 1))
	requireInvalid(t, err, basiccheck.ErrNotInited)

	mv.SetLamport(1)
	mv.SetValues(make([]string, basiccheck.DefaultConfig().MaxValues+1))
	_, err = env.validate(env.sign(mv, 1))
	requireInvalid(t, err, basiccheck.ErrTooManyValues)
}

func TestSignatureChecks(t *testing.T) {
	env := newTestEnv()

	mv := &dag.MutableBaseVertex[string]{}
	mv.SetCreator(1)
	mv.CalcLamport()

	_, err := env.validate(mv.Build(dag.Signature{1, 2, 3}))
	requireInvalid(t, err, sigcheck.ErrMalformedSignature)

	_, err = env.validate(env.sign(mv, 2))
	requireInvalid(t, err, sigcheck.ErrWrongSignature)
}

func TestSignatureCheckUsesContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := mock.NewMockContext(ctrl)
	ctx.EXPECT().Validators().
		Return(pos.EqualWeightValidators([]idx.ValidatorID{1}, 1)).
		AnyTimes()
	ctx.EXPECT().VerifySignature(idx.ValidatorID(1), gomock.Any(), gomock.Any()).
		Return(errors.New("rejected")).
		Times(1)

	checkers := New(basiccheck.DefaultConfig(), ctx, newTestReader())

	mv := &dag.MutableBaseVertex[string]{}
	mv.SetCreator(1)
	mv.CalcLamport()
	err := checkers.ValidateStateless(mv.Build(make(dag.Signature, sigcheck.SignatureLength)))
	requireInvalid(t, err, sigcheck.ErrWrongSignature)
}

func TestStalePanorama(t *testing.T) {
	env := newTestEnv()

	a0 := env.build(1, 0, nil)
	b0 := env.build(2, 0, nil)
	c0 := env.build(3, 0, nil)
	env.reader.add(a0, b0, c0)
	a1 := env.build(1, 1, dag.Panorama{1: a0.ID()})
	env.reader.add(a1)
	b1 := env.build(2, 1, dag.Panorama{1: a1.ID(), 2: b0.ID()})
	env.reader.add(b1)

	// b1 observes a1, but a0 is cited
	_, err := env.validate(env.build(3, 1, dag.Panorama{1: a0.ID(), 2: b1.ID(), 3: c0.ID()}))
	requireInvalid(t, err, panoramacheck.ErrStalePanorama)

	// b1 observes validator 1, but nothing of it is cited
	_, err = env.validate(env.build(3, 1, dag.Panorama{2: b1.ID(), 3: c0.ID()}))
	requireInvalid(t, err, panoramacheck.ErrStalePanorama)

	eq, err := env.validate(env.build(3, 1, dag.Panorama{1: a1.ID(), 2: b1.ID(), 3: c0.ID()}))
	require.NoError(t, err)
	require.Nil(t, eq)
}

func TestEquivocation(t *testing.T) {
	require := require.New(t)
	env := newTestEnv()

	a0 := env.build(1, 0, nil)
	env.reader.add(a0)
	a1 := env.build(1, 1, dag.Panorama{1: a0.ID()}, "first")
	env.reader.add(a1)

	fork := env.build(1, 1, dag.Panorama{1: a0.ID()}, "second")
	eq, err := env.validate(fork)
	require.NoError(err)
	require.Equal(&consensus.Equivocation{
		Validator: 1,
		Seq:       1,
		First:     a1.ID(),
		Second:    fork.ID(),
	}, eq)
	env.reader.add(fork)

	// forked observations are allowed
	b0 := env.build(2, 0, dag.Panorama{1: a1.ID()})
	env.reader.add(b0)
	eq, err = env.validate(env.build(3, 0, dag.Panorama{1: fork.ID(), 2: b0.ID()}))
	require.NoError(err)
	require.Nil(eq)
}

func TestConflictsFinalized(t *testing.T) {
	require := require.New(t)
	env := newTestEnv()

	a0 := env.build(1, 0, nil)
	a1 := env.build(1, 1, dag.Panorama{1: a0.ID()}, "first")
	env.reader.add(a0, a1)
	env.reader.finalized[1] = a1

	// the slot is finalized with another vertex
	fork := env.build(1, 1, dag.Panorama{1: a0.ID()}, "second")
	_, err := env.validate(fork)
	requireInvalid(t, err, panoramacheck.ErrConflictsFinalized)
	var conflict *panoramacheck.ConflictError
	require.True(errors.As(err, &conflict))
	require.Equal(a1.ID(), conflict.Evidence.First)
	require.Equal(fork.ID(), conflict.Evidence.Second)

	// a forked genesis
	_, err = env.validate(env.build(1, 0, nil, "again"))
	requireInvalid(t, err, panoramacheck.ErrConflictsFinalized)

	// a chain which skips the finalized vertex
	env.reader.finalized[1] = a0
	env.reader.add(fork)
	a2 := env.build(1, 2, dag.Panorama{1: fork.ID()})
	eq, err := env.validate(a2)
	require.NoError(err)
	require.Nil(eq)

	env.reader.finalized[1] = a1
	_, err = env.validate(a2)
	requireInvalid(t, err, panoramacheck.ErrConflictsFinalized)
}
