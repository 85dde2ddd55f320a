// Package engine implements the veilgov governance state machine: numbered
// batches of encrypted proposals, access control over who may mutate them,
// cooldown gating, and the request/callback protocol that settles a batch
// through the external decryption oracle.
//
// All state is owned by a single Engine value constructed from a genesis;
// there are no package-level registries. Operations execute strictly
// serialized under the Engine's mutex: each operation runs to completion
// with no interleaving, so no operation ever observes another's
// intermediate state. The only concurrency in the protocol is temporal:
// an arbitrary amount of time and any number of operations may pass between
// a decryption request and its callback, and multiple requests may be
// outstanding at once without blocking each other.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/veilgov/gov"
	"github.com/rony4d/veilgov/gov/genesis"
	"github.com/rony4d/veilgov/inter"
	"github.com/rony4d/veilgov/metrics"
	"github.com/rony4d/veilgov/oracle"
	"github.com/rony4d/veilgov/sealvault"
)

// Recorder consumes the engine's audit records. events.Emitter satisfies
// it; tests may plug a synchronous collector instead.
type Recorder interface {
	Emit(rec *inter.Record)
}

// actionClass distinguishes the independently cooled-down action kinds.
type actionClass uint8

const (
	actionSubmission actionClass = iota + 1
	actionDecision
)

// cooldownKey addresses the last-action time of one identity in one class.
type cooldownKey struct {
	id    common.Address
	class actionClass
}

// Engine is the governance state machine of one protocol deployment.
type Engine struct {
	mu sync.Mutex

	rules    gov.Rules
	instance common.Address
	vault    sealvault.Vault
	service  oracle.Service
	verifier oracle.Verifier
	recorder Recorder
	now      func() time.Time

	admin      common.Address
	paused     bool
	submitters map[common.Address]bool

	cooldownSeconds uint64
	lastAction      map[cooldownKey]time.Time

	currentBatch inter.BatchID
	batchOpen    bool
	proposals    map[inter.BatchID]inter.Proposal

	contexts map[inter.RequestID]*inter.DecryptionContext
}

// Option tweaks an Engine under construction.
type Option func(*Engine)

// WithRecorder attaches an audit record consumer.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithClock overrides the engine's time source. Used by tests to drive
// cooldown windows deterministically.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New constructs an engine from a genesis and its external collaborators.
// The genesis batch id is 0 with no open batch and no proposal; the first
// OpenBatch call moves the deployment to batch 1.
func New(g genesis.Genesis, vault sealvault.Vault, service oracle.Service, verifier oracle.Verifier, opts ...Option) (*Engine, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}
	if vault == nil || service == nil || verifier == nil {
		return nil, fmt.Errorf("nil collaborator")
	}

	e := &Engine{
		rules:           g.Rules.Copy(),
		instance:        g.InstanceID,
		vault:           vault,
		service:         service,
		verifier:        verifier,
		now:             time.Now,
		admin:           g.Admin,
		submitters:      make(map[common.Address]bool),
		cooldownSeconds: g.Rules.Protocol.CooldownSeconds,
		lastAction:      make(map[cooldownKey]time.Time),
		proposals:       make(map[inter.BatchID]inter.Proposal),
		contexts:        make(map[inter.RequestID]*inter.DecryptionContext),
	}
	for _, s := range g.Submitters {
		e.submitters[s] = true
	}
	for _, opt := range opts {
		opt(e)
	}

	metrics.Paused.Set(0)
	metrics.CurrentBatch.Set(float64(e.currentBatch))
	return e, nil
}

// Rules returns a copy of the deployment's rules.
func (e *Engine) Rules() gov.Rules {
	return e.rules.Copy()
}

// InstanceID returns the deployment identity mixed into fingerprints.
func (e *Engine) InstanceID() common.Address {
	return e.instance
}

// record emits one audit record if a recorder is attached.
func (e *Engine) record(rec inter.Record) {
	if e.recorder == nil {
		return
	}
	rec.Time = inter.FromUnix(e.now())
	e.recorder.Emit(&rec)
}

// reject counts a rejected operation and returns the error unchanged.
func (e *Engine) reject(err error) error {
	metrics.RejectedOps.WithLabelValues(reasonOf(err)).Inc()
	return err
}
