package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/veilgov/inter"
)

// TransferAdmin reassigns the administrator identity. Only the current
// administrator may call it, and only while the system is live.
func (e *Engine) TransferAdmin(caller, next common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return e.reject(ErrAccessDenied)
	}
	if e.paused {
		return e.reject(ErrPaused)
	}
	if next == (common.Address{}) {
		return e.reject(ErrZeroAddress)
	}

	prev := e.admin
	e.admin = next
	e.record(inter.Record{
		Type:  inter.RecordAdminChanged,
		Actor: caller,
		Body:  inter.AdminChangedBody{Prev: prev, Next: next}.Bytes(),
	})
	return nil
}

// AuthorizeSubmitter grants proposal-submission rights to an identity.
// Authorizing an already authorized identity is a no-op: no state change
// and no audit record.
func (e *Engine) AuthorizeSubmitter(caller, submitter common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return e.reject(ErrAccessDenied)
	}
	if e.paused {
		return e.reject(ErrPaused)
	}
	if submitter == (common.Address{}) {
		return e.reject(ErrZeroAddress)
	}
	if e.submitters[submitter] {
		return nil
	}

	e.submitters[submitter] = true
	e.record(inter.Record{
		Type:  inter.RecordSubmitterAuthorized,
		Actor: caller,
		Body:  inter.SubmitterBody{Submitter: submitter}.Bytes(),
	})
	return nil
}

// RevokeSubmitter removes proposal-submission rights from an identity.
// Revoking an identity that is not authorized is a no-op.
func (e *Engine) RevokeSubmitter(caller, submitter common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return e.reject(ErrAccessDenied)
	}
	if e.paused {
		return e.reject(ErrPaused)
	}
	if !e.submitters[submitter] {
		return nil
	}

	delete(e.submitters, submitter)
	e.record(inter.Record{
		Type:  inter.RecordSubmitterRevoked,
		Actor: caller,
		Body:  inter.SubmitterBody{Submitter: submitter}.Bytes(),
	})
	return nil
}

// Admin returns the current administrator identity.
func (e *Engine) Admin() common.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.admin
}

// IsSubmitter reports whether the identity holds submission rights.
func (e *Engine) IsSubmitter(id common.Address) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitters[id]
}
