package engine

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/veilgov/inter"
)

// checkCooldown verifies that the identity's per-class interval has
// elapsed. It does not stamp the new last-action time: the timestamp is
// recorded only when the gated operation actually proceeds, so a failed
// operation never extends the wait.
func (e *Engine) checkCooldown(id common.Address, class actionClass, now time.Time) error {
	if e.cooldownSeconds == 0 {
		return nil
	}
	last, ok := e.lastAction[cooldownKey{id, class}]
	if !ok {
		return nil
	}
	if now.Before(last.Add(time.Duration(e.cooldownSeconds) * time.Second)) {
		return ErrCooldownActive
	}
	return nil
}

// stampCooldown records the action time as a side effect of the gated
// operation succeeding.
func (e *Engine) stampCooldown(id common.Address, class actionClass, now time.Time) {
	e.lastAction[cooldownKey{id, class}] = now
}

// SetCooldown reconfigures the cooldown interval. The change takes effect
// immediately for all subsequent checks; in-flight waits are not
// grandfathered.
func (e *Engine) SetCooldown(caller common.Address, seconds uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return e.reject(ErrAccessDenied)
	}
	if e.paused {
		return e.reject(ErrPaused)
	}

	old := e.cooldownSeconds
	e.cooldownSeconds = seconds
	e.record(inter.Record{
		Type:  inter.RecordCooldownChanged,
		Actor: caller,
		Body:  inter.CooldownChangedBody{Old: old, New: seconds}.Bytes(),
	})
	return nil
}

// CooldownSeconds returns the currently enforced interval.
func (e *Engine) CooldownSeconds() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cooldownSeconds
}
