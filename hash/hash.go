package hash

import (
	"fmt"
	"math/rand"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Length of a digest in bytes.
const Length = 32

// Zero is an empty digest.
var Zero = Hash{}

// Hash is a Keccak-256 digest. Vertex ids and signed payloads are built on it.
type Hash [Length]byte

// Of calculates the Keccak-256 digest of the concatenated data.
func Of(data ...[]byte) Hash {
	return Hash(crypto.Keccak256Hash(data...))
}

// BytesToHash converts b to a digest, cropping it from the left if it is too long.
func BytesToHash(b []byte) (h Hash) {
	if len(b) > Length {
		b = b[len(b)-Length:]
	}
	copy(h[Length-len(b):], b)
	return h
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Hex() string { return hexutil.Encode(h[:]) }

func (h Hash) String() string { return h.Hex() }

// TerminalString implements log.TerminalStringer.
func (h Hash) TerminalString() string {
	return fmt.Sprintf("%x…%x", h[:3], h[Length-3:])
}

func (h Hash) IsZero() bool {
	return h == Zero
}

// FakeHash generates a random digest for tests. A seed makes it reproducible.
func FakeHash(seed ...int64) (h Hash) {
	if len(seed) > 0 {
		_, _ = rand.New(rand.NewSource(seed[0])).Read(h[:])
	} else {
		_, _ = rand.Read(h[:])
	}
	return h
}
