// Package keys signs and verifies vertex digests with secp256k1 keys.
package keys

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Fantom-foundation/vertexdag/hash"
	"github.com/Fantom-foundation/vertexdag/inter/idx"
)

// SignatureLength is the length of [R || S || V] signature.
const SignatureLength = crypto.SignatureLength

var (
	ErrUnknownKey   = errors.New("validator key is unknown")
	ErrBadSignature = errors.New("signature verification failed")
)

// PubKeys maps validators to uncompressed public keys.
type PubKeys map[idx.ValidatorID][]byte

// Verify checks the [R || S || V] signature of creator over digest.
func (pp PubKeys) Verify(creator idx.ValidatorID, digest hash.Hash, sig []byte) error {
	pub, ok := pp[creator]
	if !ok {
		return ErrUnknownKey
	}
	if len(sig) != SignatureLength {
		return ErrBadSignature
	}
	if !crypto.VerifySignature(pub, digest.Bytes(), sig[:SignatureLength-1]) {
		return ErrBadSignature
	}
	return nil
}

// Keyring holds private keys of validators.
type Keyring struct {
	keys map[idx.ValidatorID]*ecdsa.PrivateKey
}

// NewKeyring makes an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{
		keys: make(map[idx.ValidatorID]*ecdsa.PrivateKey),
	}
}

// Add the validator key.
func (k *Keyring) Add(id idx.ValidatorID, key *ecdsa.PrivateKey) {
	k.keys[id] = key
}

// Generate random keys for validators.
func (k *Keyring) Generate(ids ...idx.ValidatorID) error {
	for _, id := range ids {
		key, err := crypto.GenerateKey()
		if err != nil {
			return err
		}
		k.Add(id, key)
	}
	return nil
}

// FakeKeyring makes deterministic keys of validators for testing purpose.
func FakeKeyring(ids ...idx.ValidatorID) *Keyring {
	k := NewKeyring()
	for _, id := range ids {
		seed := crypto.Keccak256([]byte("fake"), id.Bytes())
		key, err := crypto.ToECDSA(seed)
		if err != nil {
			panic(err)
		}
		k.Add(id, key)
	}
	return k
}

// Sign the digest on behalf of creator.
func (k *Keyring) Sign(creator idx.ValidatorID, digest hash.Hash) ([]byte, error) {
	key, ok := k.keys[creator]
	if !ok {
		return nil, ErrUnknownKey
	}
	return crypto.Sign(digest.Bytes(), key)
}

// PubKeys returns public keys of the keyring.
func (k *Keyring) PubKeys() PubKeys {
	pp := make(PubKeys, len(k.keys))
	for id, key := range k.keys {
		pp[id] = crypto.FromECDSAPub(&key.PublicKey)
	}
	return pp
}
