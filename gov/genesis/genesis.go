// Package genesis defines the initial state of a veilgov deployment.
// The genesis establishes the protocol rules, the deployment's instance
// identity (mixed into every content fingerprint), the initial
// administrator and the initial submitter set that all operators of a
// deployment must agree on.
package genesis

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/veilgov/gov"
	"github.com/rony4d/veilgov/inter"
)

// FakeGenesisTime is the default timestamp used for fake deployments.
// It provides a consistent reference point for fake network initialization.
var FakeGenesisTime = inter.Timestamp(1608600000 * uint64(time.Second))

// Genesis is the complete initial state of a deployment.
type Genesis struct {
	// Rules are the protocol parameters the deployment starts with.
	Rules gov.Rules
	// InstanceID is the unique identity of this protocol deployment.
	// It is mixed into every content fingerprint so that fingerprints are
	// not replayable across deployments holding structurally identical
	// data.
	InstanceID common.Address
	// Admin is the initial administrator identity.
	Admin common.Address
	// Submitters are the identities authorized to submit proposals from
	// the start. The set may be empty; the administrator can authorize
	// identities at runtime.
	Submitters []common.Address
	// Time is the deployment timestamp.
	Time inter.Timestamp
}

// Validate checks the genesis for internal consistency.
func (g Genesis) Validate() error {
	if err := g.Rules.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	empty := common.Address{}
	if g.Admin == empty {
		return fmt.Errorf("genesis administrator is the zero address")
	}
	if g.InstanceID == empty {
		return fmt.Errorf("genesis instance id is the zero address")
	}
	for _, s := range g.Submitters {
		if s == empty {
			return fmt.Errorf("genesis submitter is the zero address")
		}
	}
	return nil
}

// FakeKey returns a deterministic private key for fake networks.
// Key n is derived from a fixed seed, so every node of a fake deployment
// agrees on the identities without any key distribution. Never use these
// keys outside of tests and local development.
func FakeKey(n int) *ecdsa.PrivateKey {
	seed := crypto.Keccak256([]byte(fmt.Sprintf("veilgov-fake-key-%d", n)))
	key, err := crypto.ToECDSA(seed)
	if err != nil {
		panic(err) // a keccak digest is always a valid secp256k1 scalar source for these fixed seeds
	}
	return key
}

// FakeGenesis builds a genesis for a local fake deployment with the given
// number of submitters. Key 0 is the administrator; keys 1..n are the
// submitters. The corresponding private keys are returned so tests and dev
// tooling can act as those identities.
func FakeGenesis(submitters int) (Genesis, []*ecdsa.PrivateKey) {
	keys := make([]*ecdsa.PrivateKey, submitters+1)
	for i := range keys {
		keys[i] = FakeKey(i)
	}

	g := Genesis{
		Rules:      gov.FakeNetRules(),
		InstanceID: crypto.PubkeyToAddress(FakeKey(1000).PublicKey),
		Admin:      crypto.PubkeyToAddress(keys[0].PublicKey),
		Time:       FakeGenesisTime,
	}
	for _, k := range keys[1:] {
		g.Submitters = append(g.Submitters, crypto.PubkeyToAddress(k.PublicKey))
	}
	return g, keys
}
