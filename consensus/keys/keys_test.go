package keys

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/vertexdag/hash"
)

func TestSignVerify(t *testing.T) {
	require := require.New(t)

	k := FakeKeyring(1, 2)
	require.NoError(k.Generate(3))
	pp := k.PubKeys()
	digest := hash.FakeHash(1)

	sig, err := k.Sign(1, digest)
	require.NoError(err)
	require.Len(sig, SignatureLength)
	require.NoError(pp.Verify(1, digest, sig))

	// another signer
	require.ErrorIs(pp.Verify(2, digest, sig), ErrBadSignature)
	// another digest
	require.ErrorIs(pp.Verify(1, hash.FakeHash(2), sig), ErrBadSignature)
	// truncated
	require.ErrorIs(pp.Verify(1, digest, sig[:10]), ErrBadSignature)
	// unknown
	require.ErrorIs(pp.Verify(4, digest, sig), ErrUnknownKey)
	_, err = k.Sign(4, digest)
	require.ErrorIs(err, ErrUnknownKey)

	// fake keys are deterministic
	require.Equal(pp[1], FakeKeyring(1).PubKeys()[1])
}
