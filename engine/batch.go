package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/veilgov/inter"
	"github.com/rony4d/veilgov/inter/cipherhandle"
	"github.com/rony4d/veilgov/metrics"
)

// OpenBatch advances the deployment to a fresh batch: the current batch id
// increments by exactly 1 and the new batch opens for submissions. The new
// id starts with no proposal; nothing is inherited from or written into
// prior batches, which remain immutable history.
func (e *Engine) OpenBatch(caller common.Address) (inter.BatchID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return 0, e.reject(ErrAccessDenied)
	}
	if e.paused {
		return 0, e.reject(ErrPaused)
	}

	e.currentBatch++
	e.batchOpen = true
	metrics.BatchesOpened.Inc()
	metrics.CurrentBatch.Set(float64(e.currentBatch))
	e.record(inter.Record{
		Type:  inter.RecordBatchOpened,
		Actor: caller,
		Batch: e.currentBatch,
	})
	return e.currentBatch, nil
}

// CloseBatch closes the current batch for submissions. It does not require
// a proposal to exist, and the batch id stays current: a decision may still
// be requested for it until a newer batch is opened.
func (e *Engine) CloseBatch(caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return e.reject(ErrAccessDenied)
	}
	if e.paused {
		return e.reject(ErrPaused)
	}

	e.batchOpen = false
	e.record(inter.Record{
		Type:  inter.RecordBatchClosed,
		Actor: caller,
		Batch: e.currentBatch,
	})
	return nil
}

// SubmitProposal stores an encrypted proposal triple under the current
// batch. Resubmitting to the same open batch overwrites the prior proposal
// (last-write-wins); callers rely on that to amend a pending proposal, so
// an overwrite is a success, not an error.
//
// Handles that are not initialized in the vault are defensively
// materialized as encrypted zeros, unless the StrictHandles upgrade makes
// them a hard rejection.
func (e *Engine) SubmitProposal(caller common.Address, proposalID, targetValue, marketPrediction cipherhandle.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.submitters[caller] {
		return e.reject(ErrAccessDenied)
	}
	if e.paused {
		return e.reject(ErrPaused)
	}
	now := e.now()
	if err := e.checkCooldown(caller, actionSubmission, now); err != nil {
		return e.reject(err)
	}
	if !e.batchOpen {
		return e.reject(ErrBatchClosed)
	}

	p := inter.Proposal{
		ProposalID:       proposalID,
		TargetValue:      targetValue,
		MarketPrediction: marketPrediction,
	}
	normalized := p.Handles()
	for i, h := range normalized {
		if e.vault.IsInitialized(h) {
			continue
		}
		if e.rules.Upgrades.StrictHandles {
			return e.reject(ErrUninitializedHandle)
		}
		normalized[i] = e.vault.Materialize(0, cipherhandle.Kinds.Uint64)
	}
	p = inter.Proposal{
		ProposalID:       normalized[0],
		TargetValue:      normalized[1],
		MarketPrediction: normalized[2],
	}

	e.proposals[e.currentBatch] = p
	e.stampCooldown(caller, actionSubmission, now)
	metrics.ProposalsSubmitted.Inc()
	e.record(inter.Record{
		Type:  inter.RecordProposalSubmitted,
		Actor: caller,
		Batch: e.currentBatch,
	})
	return nil
}

// CurrentBatch returns the current batch id and whether it is open.
func (e *Engine) CurrentBatch() (inter.BatchID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentBatch, e.batchOpen
}

// ProposalOf returns a copy of the proposal stored under the given batch
// id, and whether one exists.
func (e *Engine) ProposalOf(batch inter.BatchID) (inter.Proposal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.proposals[batch]
	if !ok {
		return inter.Proposal{}, false
	}
	return p.Copy(), true
}
