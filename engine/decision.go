package engine

import (
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/rony4d/veilgov/inter"
	"github.com/rony4d/veilgov/metrics"
	"github.com/rony4d/veilgov/oracle"
)

// Outcome is the settled result of one decryption request.
type Outcome struct {
	Request          inter.RequestID
	Batch            inter.BatchID
	ProposalID       *big.Int
	TargetValue      *big.Int
	MarketPrediction *big.Int
	// Approved is the governance decision: the market prediction reached
	// the target value. The comparison is non-strict, so a tie passes.
	Approved bool
}

// fingerprintOf computes the content fingerprint of a proposal's handles
// as currently stored, bound to this deployment's instance identity.
func (e *Engine) fingerprintOf(p inter.Proposal) hash.Hash {
	handles := p.Handles()
	fps := make([][]byte, len(handles))
	for i, h := range handles {
		fps[i] = e.vault.FingerprintOf(h)
	}
	return inter.CalcFingerprint(e.instance, fps)
}

// RequestDecision issues a decryption request for the current batch's
// proposal. The batch does not have to be open, so a decision may be
// requested after CloseBatch, but its id must still be current: once a
// newer batch is opened, older batches are immutable history and can no
// longer be settled.
//
// The engine fingerprints the exact handles submitted to the oracle, so a
// later delivery can be checked against the state it was issued over.
// Multiple requests may be outstanding at once; each gets its own id and
// context and they do not block each other.
func (e *Engine) RequestDecision(caller common.Address, batch inter.BatchID) (inter.RequestID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.submitters[caller] {
		return "", e.reject(ErrAccessDenied)
	}
	if e.paused {
		return "", e.reject(ErrPaused)
	}
	now := e.now()
	if err := e.checkCooldown(caller, actionDecision, now); err != nil {
		return "", e.reject(err)
	}
	if batch != e.currentBatch {
		return "", e.reject(ErrInvalidBatch)
	}
	p, ok := e.proposals[batch]
	if !ok {
		return "", e.reject(ErrProposalNotInitialized)
	}
	for _, h := range p.Handles() {
		if !e.vault.IsInitialized(h) {
			return "", e.reject(ErrProposalNotInitialized)
		}
	}

	fingerprint := e.fingerprintOf(p)
	id, err := e.service.SubmitRequest(p.Handles())
	if err != nil {
		return "", fmt.Errorf("oracle rejected decryption request: %w", err)
	}

	e.contexts[id] = &inter.DecryptionContext{
		Batch:       batch,
		Fingerprint: fingerprint,
	}
	e.stampCooldown(caller, actionDecision, now)
	metrics.DecryptionRequests.Inc()
	e.record(inter.Record{
		Type:    inter.RecordDecryptionRequested,
		Actor:   caller,
		Batch:   batch,
		Request: id,
	})
	return id, nil
}

// DeliverDecryption is the oracle's delivery channel. It is callable by
// anyone: authenticity is established by the proof, not by caller identity,
// so any party may relay a valid decryption.
//
// The checks run in a fixed order and short-circuit on the first failure,
// leaving all state untouched: unknown request id, replay, fingerprint
// freshness against the *currently* stored handles, proof verification,
// payload decoding. Only a delivery passing all of them flips the context
// to processed, exactly once per request id, and derives the decision.
// The proposal and batch records are never touched: a settled decision is a
// derived, append-only fact, not a rewrite of history.
func (e *Engine) DeliverDecryption(id inter.RequestID, clearValues []byte, proof []byte) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, ok := e.contexts[id]
	if !ok {
		return Outcome{}, e.rejectDelivery(id, ErrUnknownRequest)
	}
	if ctx.Processed {
		return Outcome{}, e.rejectDelivery(id, ErrReplayAttempt)
	}

	p, ok := e.proposals[ctx.Batch]
	if !ok || e.fingerprintOf(p) != ctx.Fingerprint {
		return Outcome{}, e.rejectDelivery(id, ErrStateMismatch)
	}

	if !e.verifier.VerifyProof(id, clearValues, proof) {
		return Outcome{}, e.rejectDelivery(id, ErrInvalidProof)
	}

	if uint32(len(clearValues)) > e.rules.Oracle.MaxClearPayload {
		return Outcome{}, e.rejectDelivery(id, ErrMalformedPayload)
	}
	proposalID, targetValue, prediction, err := oracle.UnpackClearValues(clearValues)
	if err != nil {
		return Outcome{}, e.rejectDelivery(id, fmt.Errorf("%w: %s", ErrMalformedPayload, err))
	}

	outcome := Outcome{
		Request:          id,
		Batch:            ctx.Batch,
		ProposalID:       proposalID,
		TargetValue:      targetValue,
		MarketPrediction: prediction,
		Approved:         prediction.Cmp(targetValue) >= 0,
	}

	ctx.Processed = true
	metrics.Deliveries.WithLabelValues("settled").Inc()
	e.record(inter.Record{
		Type:    inter.RecordDecryptionCompleted,
		Batch:   ctx.Batch,
		Request: id,
		Body: inter.DecisionBody{
			ProposalID:       proposalID,
			TargetValue:      targetValue,
			MarketPrediction: prediction,
			Approved:         outcome.Approved,
		}.Bytes(),
	})
	return outcome, nil
}

// rejectDelivery counts and logs a rejected delivery. Deliveries arrive
// from an open endpoint, so rejections are security-relevant and logged at
// warning level.
func (e *Engine) rejectDelivery(id inter.RequestID, err error) error {
	metrics.Deliveries.WithLabelValues(reasonOf(err)).Inc()
	log.WithFields(log.Fields{
		"request": string(id),
		"reason":  reasonOf(err),
	}).Warn("rejected decryption delivery")
	return err
}

// Context returns a copy of the decryption context stored under the given
// request id, and whether one exists. Contexts are never deleted, so a
// request that never receives a callback stays visible as unprocessed.
func (e *Engine) Context(id inter.RequestID) (inter.DecryptionContext, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx, ok := e.contexts[id]
	if !ok {
		return inter.DecryptionContext{}, false
	}
	return *ctx, true
}
