package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/veilgov/inter"
	"github.com/rony4d/veilgov/metrics"
)

// Pause halts every mutating operation except Unpause and the oracle
// delivery path. It fails with ErrAlreadyPaused when the system is already
// paused. Read-only queries stay available while paused.
func (e *Engine) Pause(caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return e.reject(ErrAccessDenied)
	}
	if e.paused {
		return e.reject(ErrAlreadyPaused)
	}

	e.paused = true
	metrics.Paused.Set(1)
	e.record(inter.Record{
		Type:  inter.RecordPaused,
		Actor: caller,
	})
	return nil
}

// Unpause resumes normal operation. It is idempotent: unpausing a live
// system succeeds without a state change or an audit record.
func (e *Engine) Unpause(caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return e.reject(ErrAccessDenied)
	}
	if !e.paused {
		return nil
	}

	e.paused = false
	metrics.Paused.Set(0)
	e.record(inter.Record{
		Type:  inter.RecordUnpaused,
		Actor: caller,
	})
	return nil
}

// Paused reports the lifecycle pause flag.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}
