package idx

import (
	"encoding/binary"
)

type (
	// ValidatorID is an opaque handle of a validator, comparable and orderable.
	ValidatorID uint32

	// Seq is a position of a vertex in its creator's chain.
	// Genesis vertices of a creator have Seq 0.
	Seq uint64

	// Lamport numeration.
	Lamport uint32

	// Batch numeration of finalized batches.
	Batch uint64
)

// Bytes is the big-endian representation, the byte order is the numeric order.
func (v ValidatorID) Bytes() []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(v))
}

// Bytes gets the byte representation of the index.
func (s Seq) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(s))
}

// Bytes gets the byte representation of the index.
func (l Lamport) Bytes() []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(l))
}

// Bytes gets the byte representation of the index.
func (b Batch) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(b))
}

// BytesToValidatorID converts bytes to validator index.
func BytesToValidatorID(b []byte) ValidatorID {
	return ValidatorID(binary.BigEndian.Uint32(b))
}

// BytesToSeq converts bytes to seq index.
func BytesToSeq(b []byte) Seq {
	return Seq(binary.BigEndian.Uint64(b))
}

// BytesToLamport converts bytes to Lamport index.
func BytesToLamport(b []byte) Lamport {
	return Lamport(binary.BigEndian.Uint32(b))
}

// BytesToBatch converts bytes to batch index.
func BytesToBatch(b []byte) Batch {
	return Batch(binary.BigEndian.Uint64(b))
}

// MaxLamport return max value
func MaxLamport(x, y Lamport) Lamport {
	if x > y {
		return x
	}
	return y
}
