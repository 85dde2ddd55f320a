package inter

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/veilgov/inter/cipherhandle"
)

// Proposal is the encrypted content of a batch: three opaque handles
// submitted together by an authorized submitter. A batch holds at most one
// Proposal; resubmission to the same open batch overwrites the prior triple
// (last-write-wins), which is an explicit protocol policy rather than an
// error.
type Proposal struct {
	// ProposalID references the encrypted proposal identifier.
	ProposalID cipherhandle.Handle
	// TargetValue references the encrypted threshold the market prediction
	// is compared against when the decision is derived.
	TargetValue cipherhandle.Handle
	// MarketPrediction references the encrypted prediction value.
	MarketPrediction cipherhandle.Handle
}

// Handles returns the proposal's handles in canonical protocol order.
// The order is load-bearing: fingerprints and decryption requests are
// computed over exactly this sequence.
func (p Proposal) Handles() []cipherhandle.Handle {
	return []cipherhandle.Handle{p.ProposalID, p.TargetValue, p.MarketPrediction}
}

// Empty reports whether no proposal was ever stored in this slot.
func (p Proposal) Empty() bool {
	return p.ProposalID.Empty() && p.TargetValue.Empty() && p.MarketPrediction.Empty()
}

// Copy creates a deep copy of the Proposal.
func (p Proposal) Copy() Proposal {
	return Proposal{
		ProposalID:       p.ProposalID.Copy(),
		TargetValue:      p.TargetValue.Copy(),
		MarketPrediction: p.MarketPrediction.Copy(),
	}
}

// CalcFingerprint computes the content fingerprint binding a decryption
// request to the exact handles it was issued against. The digest covers the
// deployment's instance identity followed by the per-handle fingerprints, so
// structurally identical data held by a different instance produces a
// different fingerprint and a callback can never be replayed across
// deployments.
func CalcFingerprint(instance common.Address, handleFps [][]byte) hash.Hash {
	data := make([][]byte, 0, len(handleFps)+1)
	data = append(data, instance.Bytes())
	data = append(data, handleFps...)
	return hash.BytesToHash(crypto.Keccak256(data...))
}

// DecryptionContext tracks a single outstanding decryption request.
// It is created exactly once when the request is issued and mutated exactly
// once (Processed false -> true) when a valid callback settles it. Contexts
// are never deleted: a request whose callback never arrives stays
// unprocessed forever, blocking nothing else.
type DecryptionContext struct {
	// Batch is the batch id the request was issued against.
	Batch BatchID
	// Fingerprint is the content fingerprint of the handles at request
	// time. It is immutable after creation.
	Fingerprint hash.Hash
	// Processed flips to true when a valid callback is applied. It never
	// flips back; a processed context rejects every further delivery.
	Processed bool
}
