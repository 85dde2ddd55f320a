package engine

import "errors"

// Protocol errors. Every rejected operation returns one of these values
// (possibly wrapped) and leaves the engine state untouched.
var (
	// ErrAccessDenied is returned when the caller lacks the privilege the
	// operation requires.
	ErrAccessDenied = errors.New("access denied")

	// ErrZeroAddress is returned when an operation would install the zero
	// address as a principal.
	ErrZeroAddress = errors.New("zero address is not a valid identity")

	// ErrPaused is returned for mutating operations while the system is
	// paused.
	ErrPaused = errors.New("system is paused")

	// ErrAlreadyPaused is returned by Pause when the system is already
	// paused.
	ErrAlreadyPaused = errors.New("system is already paused")

	// ErrCooldownActive is returned when an action is attempted before
	// the per-identity, per-action-class interval elapsed.
	ErrCooldownActive = errors.New("cooldown is active")

	// ErrBatchClosed is returned for submissions while the current batch
	// is not open.
	ErrBatchClosed = errors.New("batch is not open")

	// ErrInvalidBatch is returned when a decision is requested for a
	// batch id other than the current one.
	ErrInvalidBatch = errors.New("not the current batch")

	// ErrProposalNotInitialized is returned when a decision is requested
	// for a batch whose proposal is absent or only partially initialized.
	ErrProposalNotInitialized = errors.New("proposal is absent or not initialized")

	// ErrUninitializedHandle is returned by submissions carrying handles
	// the vault does not recognize, when the StrictHandles upgrade is
	// enabled.
	ErrUninitializedHandle = errors.New("handle is not initialized")

	// ErrUnknownRequest is returned for deliveries referencing a request
	// id that was never issued.
	ErrUnknownRequest = errors.New("unknown decryption request")

	// ErrReplayAttempt is returned for deliveries against an already
	// processed request.
	ErrReplayAttempt = errors.New("request already processed")

	// ErrStateMismatch is returned when the delivered request's
	// fingerprint no longer matches the stored handles.
	ErrStateMismatch = errors.New("stored handles changed since the request was issued")

	// ErrInvalidProof is returned when the external verifier rejects the
	// delivery proof.
	ErrInvalidProof = errors.New("invalid decryption proof")

	// ErrMalformedPayload is returned when the delivered clear values
	// cannot be decoded.
	ErrMalformedPayload = errors.New("malformed clear values")
)

// reasonOf maps a protocol error to a short label for metrics.
func reasonOf(err error) string {
	switch {
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrZeroAddress):
		return "zero_address"
	case errors.Is(err, ErrAlreadyPaused):
		return "already_paused"
	case errors.Is(err, ErrPaused):
		return "paused"
	case errors.Is(err, ErrCooldownActive):
		return "cooldown"
	case errors.Is(err, ErrBatchClosed):
		return "batch_closed"
	case errors.Is(err, ErrInvalidBatch):
		return "invalid_batch"
	case errors.Is(err, ErrProposalNotInitialized):
		return "proposal_not_initialized"
	case errors.Is(err, ErrUninitializedHandle):
		return "uninitialized_handle"
	case errors.Is(err, ErrUnknownRequest):
		return "unknown"
	case errors.Is(err, ErrReplayAttempt):
		return "replay"
	case errors.Is(err, ErrStateMismatch):
		return "state_mismatch"
	case errors.Is(err, ErrInvalidProof):
		return "invalid_proof"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed"
	default:
		return "other"
	}
}
