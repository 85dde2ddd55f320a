// Package inter defines veilgov's core protocol data structures that bridge
// the on-record governance state with the external confidential-compute
// collaborators. This file contains the shared scalar types used across the
// engine: timestamps, batch numbering, and decryption request identifiers.
//
// Key concepts:
//   - Timestamp: Unix-nanosecond protocol time, comparable and serializable
//   - BatchID: monotonically increasing batch number (opens at 0, +1 per open)
//   - RequestID: opaque, globally unique id allocated by the decryption oracle
//
// Batch ids are never reused; an engine instance only ever moves its current
// batch id forward. Request ids are allocated by the external oracle and are
// treated as fully opaque strings by the protocol.

package inter

import (
	"time"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
)

// Timestamp is a UNIX timestamp in nanoseconds.
type Timestamp uint64

// FromUnix converts a wall-clock time into a protocol Timestamp.
func FromUnix(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// Time converts the protocol Timestamp back into a wall-clock time.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t))
}

// Unix returns the Timestamp truncated to whole seconds.
func (t Timestamp) Unix() int64 {
	return int64(t) / int64(time.Second)
}

// MaxTimestamp returns the later of the two timestamps.
func MaxTimestamp(x, y Timestamp) Timestamp {
	if x > y {
		return x
	}
	return y
}

// BatchID is a monotonically increasing number of a proposal batch.
// The genesis state starts at batch 0; every OpenBatch call increments it
// by exactly 1. Ids of past batches are immutable history and never reused.
type BatchID uint32

// Bytes returns the big-endian encoding of the batch id, used when the id
// participates in canonical hashing.
func (b BatchID) Bytes() []byte {
	return bigendian.Uint32ToBytes(uint32(b))
}

// RequestID is an opaque, globally unique identifier of a decryption request.
// It is allocated by the external decryption oracle; the engine never
// constructs, reuses or predicts request ids.
type RequestID string

// Empty reports whether the request id is unset.
func (r RequestID) Empty() bool {
	return len(r) == 0
}
