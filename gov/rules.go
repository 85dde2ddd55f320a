// Package gov defines the network rules and configuration parameters for a
// veilgov governance deployment.
//
// This package provides:
//   - Network identification constants (MainNet, TestNet, FakeNet)
//   - Protocol rules gating submissions and decryption requests (cooldowns)
//   - Oracle rules bounding the external decryption collaborator's payloads
//   - Protocol upgrade configuration
//
// The Rules type is the central configuration structure that defines all
// protocol-critical parameters for a given veilgov network deployment. Rules
// are JSON round-trippable so deployments can pin them in a config file.

package gov

import (
	"encoding/json"
	"fmt"
)

// Network identification constants
const (
	// MainNetworkID is the network id for the veilgov mainnet deployment.
	MainNetworkID uint64 = 0x2b01

	// TestNetworkID is the network id for the public test deployment.
	TestNetworkID uint64 = 0x2b02

	// FakeNetworkID is the network id for local/fake networks used in testing.
	FakeNetworkID uint64 = 0x2b03
)

const (
	// MainNetCooldown is the minimum interval, in seconds, between two
	// gated actions of the same class by the same identity on mainnet.
	MainNetCooldown uint64 = 3600

	// TestNetCooldown relaxes the interval for the test deployment.
	TestNetCooldown uint64 = 600

	// DefaultMaxClearPayload is the hard limit on the byte size of clear
	// values delivered by the oracle callback. Three ABI-encoded uint256
	// words need 96 bytes; the limit leaves headroom for future fields
	// while preventing oversized allocations from a misbehaving oracle.
	DefaultMaxClearPayload uint32 = 1024

	// Upgrade flags (bit positions for upgrade tracking)
	strictHandleBit = 1 << 0 // reject uninitialized handles instead of materializing zeros
)

// Rules describes the complete configuration for a veilgov network.
// This is the main type used throughout the codebase to access protocol
// parameters.
type Rules struct {
	Name      string // network name identifier (e.g. "main", "test", "fake")
	NetworkID uint64 // deployment id, mixed into nothing but logs and configs

	// Protocol options - cooldown gating of submitter actions
	Protocol ProtocolRules

	// Oracle options - bounds on the external decryption collaborator
	Oracle OracleRules

	// Upgrades - protocol upgrade flags
	Upgrades Upgrades
}

// ProtocolRules gates how often submitter identities may act.
// The same cooldown value applies to proposal submissions and decryption
// requests, but the two action classes are tracked independently, so a
// submission does not delay a decryption request or vice versa.
type ProtocolRules struct {
	// CooldownSeconds is the minimum interval between two successive
	// gated actions of the same class by the same identity. The
	// administrator may change it at runtime; the change takes effect
	// immediately for all subsequent checks.
	CooldownSeconds uint64
}

// OracleRules bounds the payloads accepted from the decryption oracle.
type OracleRules struct {
	// MaxClearPayload is the maximum byte size of the clear values blob
	// accepted by the callback. Larger payloads are rejected as malformed
	// before decoding is attempted.
	MaxClearPayload uint32
}

// Upgrades tracks which protocol upgrades are enabled for this deployment.
type Upgrades struct {
	// StrictHandles rejects proposals carrying uninitialized handles
	// instead of defensively materializing encrypted zeros for them.
	StrictHandles bool
}

// MainNetRules returns the production configuration.
func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Protocol: ProtocolRules{
			CooldownSeconds: MainNetCooldown,
		},
		Oracle: OracleRules{
			MaxClearPayload: DefaultMaxClearPayload,
		},
	}
}

// TestNetRules returns the public testnet configuration. It mirrors mainnet
// except for a shorter cooldown so test actors can iterate faster.
func TestNetRules() Rules {
	r := MainNetRules()
	r.Name = "test"
	r.NetworkID = TestNetworkID
	r.Protocol.CooldownSeconds = TestNetCooldown
	return r
}

// FakeNetRules returns the configuration for local development networks.
// Cooldowns are disabled entirely so tests and dev tooling can drive the
// engine without waiting.
func FakeNetRules() Rules {
	r := MainNetRules()
	r.Name = "fake"
	r.NetworkID = FakeNetworkID
	r.Protocol.CooldownSeconds = 0
	return r
}

// Copy returns a deep copy of the rules. Rules currently hold no reference
// types, but callers should not rely on that and always use Copy when
// deriving a modified rule set.
func (r Rules) Copy() Rules {
	cp := r
	return cp
}

// String returns the JSON representation of the rules.
func (r Rules) String() string {
	b, err := json.Marshal(&r)
	if err != nil {
		return fmt.Sprintf("{error: %s}", err)
	}
	return string(b)
}

// Validate checks the rules for internal consistency.
func (r Rules) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("network name is empty")
	}
	if r.NetworkID == 0 {
		return fmt.Errorf("network id is zero")
	}
	if r.Oracle.MaxClearPayload == 0 {
		return fmt.Errorf("oracle max clear payload is zero")
	}
	return nil
}

// UpgradeBits packs the upgrade flags into a bit mask.
func (u Upgrades) UpgradeBits() uint64 {
	var bits uint64
	if u.StrictHandles {
		bits |= strictHandleBit
	}
	return bits
}
