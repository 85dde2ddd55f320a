// This file defines the append-only audit records emitted by the governance
// engine. Every state transition produces exactly one Record carrying enough
// data to reconstruct the transition. Records have a canonical RLP encoding
// so that an audit log can be persisted or transmitted and re-hashed
// deterministically.
//
// Layout on wire: a Record is a flat RLP list; type-specific payloads are
// nested as a pre-encoded RLP byte string in the Body field. This keeps the
// outer structure stable while allowing each record type to evolve its body
// independently.

package inter

import (
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// RecordType enumerates the audit record kinds emitted by the engine.
type RecordType uint8

const (
	// RecordAdminChanged marks an administrator transfer.
	RecordAdminChanged RecordType = iota + 1
	// RecordSubmitterAuthorized marks an identity gaining submitter rights.
	RecordSubmitterAuthorized
	// RecordSubmitterRevoked marks an identity losing submitter rights.
	RecordSubmitterRevoked
	// RecordPaused marks the system entering the paused state.
	RecordPaused
	// RecordUnpaused marks the system leaving the paused state.
	RecordUnpaused
	// RecordCooldownChanged marks a cooldown reconfiguration.
	RecordCooldownChanged
	// RecordBatchOpened marks a new batch becoming current and open.
	RecordBatchOpened
	// RecordBatchClosed marks the current batch being closed.
	RecordBatchClosed
	// RecordProposalSubmitted marks an encrypted proposal being stored.
	RecordProposalSubmitted
	// RecordDecryptionRequested marks a decryption request being issued.
	RecordDecryptionRequested
	// RecordDecryptionCompleted marks a request settling with a decision.
	RecordDecryptionCompleted
)

// String returns the record type's human-readable name for logs.
func (t RecordType) String() string {
	switch t {
	case RecordAdminChanged:
		return "AdminChanged"
	case RecordSubmitterAuthorized:
		return "SubmitterAuthorized"
	case RecordSubmitterRevoked:
		return "SubmitterRevoked"
	case RecordPaused:
		return "Paused"
	case RecordUnpaused:
		return "Unpaused"
	case RecordCooldownChanged:
		return "CooldownChanged"
	case RecordBatchOpened:
		return "BatchOpened"
	case RecordBatchClosed:
		return "BatchClosed"
	case RecordProposalSubmitted:
		return "ProposalSubmitted"
	case RecordDecryptionRequested:
		return "DecryptionRequested"
	case RecordDecryptionCompleted:
		return "DecryptionCompleted"
	default:
		return "Unknown"
	}
}

// Record is a single entry of the append-only audit log.
type Record struct {
	// Type identifies the state transition this record describes.
	Type RecordType
	// Time is when the transition was applied, in protocol time.
	Time Timestamp
	// Actor is the identity that triggered the transition. It is the zero
	// address for oracle callbacks, which are authenticated by proof
	// rather than by caller identity.
	Actor common.Address
	// Batch is the batch id the transition concerns, when applicable.
	Batch BatchID
	// Request is the decryption request id, for request/settlement records.
	Request RequestID
	// Body holds the RLP-encoded type-specific payload, if any.
	Body []byte
}

// Hash computes the canonical hash of the record over its RLP encoding.
func (r *Record) Hash() hash.Hash {
	b, err := rlp.EncodeToBytes(r)
	if err != nil {
		panic(err) // all Record fields are RLP-encodable
	}
	return hash.BytesToHash(crypto.Keccak256(b))
}

// AdminChangedBody is the payload of RecordAdminChanged.
type AdminChangedBody struct {
	Prev common.Address
	Next common.Address
}

// SubmitterBody is the payload of RecordSubmitterAuthorized/Revoked.
type SubmitterBody struct {
	Submitter common.Address
}

// CooldownChangedBody is the payload of RecordCooldownChanged.
type CooldownChangedBody struct {
	Old uint64
	New uint64
}

// DecisionBody is the payload of RecordDecryptionCompleted. It carries the
// decrypted clear values alongside the derived governance decision, so a
// settled decision can be audited without re-contacting the oracle.
type DecisionBody struct {
	ProposalID       *big.Int
	TargetValue      *big.Int
	MarketPrediction *big.Int
	Approved         bool
}

// Bytes returns the body's canonical RLP encoding.
func (b AdminChangedBody) Bytes() []byte { return mustEncodeBody(&b) }

// Bytes returns the body's canonical RLP encoding.
func (b SubmitterBody) Bytes() []byte { return mustEncodeBody(&b) }

// Bytes returns the body's canonical RLP encoding.
func (b CooldownChangedBody) Bytes() []byte { return mustEncodeBody(&b) }

// Bytes returns the body's canonical RLP encoding.
func (b DecisionBody) Bytes() []byte { return mustEncodeBody(&b) }

// DecodeDecisionBody parses a RecordDecryptionCompleted payload.
func DecodeDecisionBody(raw []byte) (DecisionBody, error) {
	var b DecisionBody
	err := rlp.DecodeBytes(raw, &b)
	return b, err
}

// DecodeCooldownChangedBody parses a RecordCooldownChanged payload.
func DecodeCooldownChangedBody(raw []byte) (CooldownChangedBody, error) {
	var b CooldownChangedBody
	err := rlp.DecodeBytes(raw, &b)
	return b, err
}

// DecodeAdminChangedBody parses a RecordAdminChanged payload.
func DecodeAdminChangedBody(raw []byte) (AdminChangedBody, error) {
	var b AdminChangedBody
	err := rlp.DecodeBytes(raw, &b)
	return b, err
}

// DecodeSubmitterBody parses a RecordSubmitterAuthorized/Revoked payload.
func DecodeSubmitterBody(raw []byte) (SubmitterBody, error) {
	var b SubmitterBody
	err := rlp.DecodeBytes(raw, &b)
	return b, err
}

func mustEncodeBody(v interface{}) []byte {
	b, err := rlp.EncodeToBytes(v)
	if err != nil {
		panic(err)
	}
	return b
}
