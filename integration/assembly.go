// Package integration assembles the governance runtime from its parts:
// genesis state, sealed-value vault, decryption oracle, audit emitter and
// the engine itself. The launcher and the integration tests both build
// their deployments through this package so the wiring stays in one place.
package integration

import (
	"crypto/ecdsa"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/rony4d/veilgov/engine"
	"github.com/rony4d/veilgov/events"
	"github.com/rony4d/veilgov/gov/genesis"
	"github.com/rony4d/veilgov/oracle"
	"github.com/rony4d/veilgov/oracle/local"
	"github.com/rony4d/veilgov/sealvault"
)

// Runtime bundles the assembled components of one running deployment.
type Runtime struct {
	Engine  *engine.Engine
	Emitter *events.Emitter
	Genesis genesis.Genesis

	// Vault and Oracle are populated only for local deployments where the
	// sealing and decryption services run in-process.
	Vault  *sealvault.MemVault
	Oracle *local.Oracle

	// Keys holds the deterministic identities of a fake deployment:
	// Keys[0] is the administrator, Keys[1:] are the submitters.
	Keys []*ecdsa.PrivateKey
}

// MakeRuntime wires a genesis together with an externally provided oracle
// into a runnable engine. The emitter is started and registered as the
// engine's audit recorder.
func MakeRuntime(g genesis.Genesis, vault sealvault.Vault, svc oracle.Service, verifier oracle.Verifier, opts ...engine.Option) (*Runtime, error) {
	em := events.NewEmitter(events.DefaultBufferSize)
	em.Subscribe("log", events.LogHandler())
	if err := em.Start(); err != nil {
		return nil, fmt.Errorf("start audit emitter: %w", err)
	}

	opts = append([]engine.Option{engine.WithRecorder(em)}, opts...)
	eng, err := engine.New(g, vault, svc, verifier, opts...)
	if err != nil {
		em.Stop()
		return nil, err
	}

	log.WithFields(log.Fields{
		"network":  g.Rules.Name,
		"instance": g.InstanceID.Hex(),
		"admin":    g.Admin.Hex(),
	}).Info("governance runtime assembled")

	return &Runtime{
		Engine:  eng,
		Emitter: em,
		Genesis: g,
	}, nil
}

// MakeFakeRuntime builds a fully local deployment: deterministic genesis
// identities, an in-memory vault and an in-process oracle that can both
// materialize handles and deliver decryptions. Intended for tests and
// fakenet operation only.
func MakeFakeRuntime(submitters int, opts ...engine.Option) (*Runtime, error) {
	return MakeCustomFakeRuntime(submitters, nil, opts...)
}

// MakeCustomFakeRuntime is MakeFakeRuntime with a hook to adjust the genesis
// before assembly, e.g. to flip upgrade bits for the deployment.
func MakeCustomFakeRuntime(submitters int, mutate func(*genesis.Genesis), opts ...engine.Option) (*Runtime, error) {
	if submitters < 1 {
		submitters = 1
	}
	g, keys := genesis.FakeGenesis(submitters)
	if mutate != nil {
		mutate(&g)
	}

	vault := sealvault.NewMemVault(g.InstanceID.Bytes())
	orc := local.New(genesis.FakeKey(2000), vault)

	rt, err := MakeRuntime(g, vault, orc, orc, opts...)
	if err != nil {
		return nil, err
	}
	rt.Vault = vault
	rt.Oracle = orc
	rt.Keys = keys
	return rt, nil
}

// Stop shuts the runtime down, draining any queued audit records.
func (rt *Runtime) Stop() {
	if rt.Emitter != nil {
		if err := rt.Emitter.Stop(); err != nil {
			log.WithError(err).Warn("audit emitter did not drain cleanly")
		}
	}
}
