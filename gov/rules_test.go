package gov

import (
	"encoding/json"
	"testing"
)

// TestNetworkConstants verifies that network ID constants are correctly defined.
// These constants are used throughout the codebase to identify which network
// a deployment is running on.
func TestNetworkConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant uint64
		want     uint64
	}{
		{"MainNetworkID", MainNetworkID, 0x2b01},
		{"TestNetworkID", TestNetworkID, 0x2b02},
		{"FakeNetworkID", FakeNetworkID, 0x2b03},
		{"MainNetCooldown", MainNetCooldown, 3600},
		{"TestNetCooldown", TestNetCooldown, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.constant, tt.want)
			}
		})
	}
}

// TestUpgradeBits verifies that upgrade bit flags are correctly defined and
// packed. These bits are used to track which protocol upgrades are enabled.
func TestUpgradeBits(t *testing.T) {
	if strictHandleBit != 1<<0 {
		t.Errorf("strictHandleBit = %d, want %d", strictHandleBit, 1<<0)
	}
	if got := (Upgrades{}).UpgradeBits(); got != 0 {
		t.Errorf("UpgradeBits() = %d, want 0", got)
	}
	if got := (Upgrades{StrictHandles: true}).UpgradeBits(); got != strictHandleBit {
		t.Errorf("UpgradeBits() = %d, want %d", got, strictHandleBit)
	}
}

// TestMainNetRules verifies that MainNetRules returns the correct production
// configuration: the full cooldown window and the payload bound enforced on
// oracle deliveries.
func TestMainNetRules(t *testing.T) {
	rules := MainNetRules()

	if rules.Name != "main" {
		t.Errorf("Name = %q, want 'main'", rules.Name)
	}
	if rules.NetworkID != MainNetworkID {
		t.Errorf("NetworkID = %d, want %d", rules.NetworkID, MainNetworkID)
	}
	if rules.Protocol.CooldownSeconds != MainNetCooldown {
		t.Errorf("CooldownSeconds = %d, want %d", rules.Protocol.CooldownSeconds, MainNetCooldown)
	}
	if rules.Oracle.MaxClearPayload != DefaultMaxClearPayload {
		t.Errorf("MaxClearPayload = %d, want %d", rules.Oracle.MaxClearPayload, DefaultMaxClearPayload)
	}
	if rules.Upgrades.StrictHandles {
		t.Error("StrictHandles enabled on mainnet by default")
	}
	if err := rules.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

// TestTestNetRules verifies the testnet preset mirrors mainnet except for
// the shorter cooldown.
func TestTestNetRules(t *testing.T) {
	rules := TestNetRules()

	if rules.Name != "test" {
		t.Errorf("Name = %q, want 'test'", rules.Name)
	}
	if rules.NetworkID != TestNetworkID {
		t.Errorf("NetworkID = %d, want %d", rules.NetworkID, TestNetworkID)
	}
	if rules.Protocol.CooldownSeconds != TestNetCooldown {
		t.Errorf("CooldownSeconds = %d, want %d", rules.Protocol.CooldownSeconds, TestNetCooldown)
	}
	if rules.Oracle.MaxClearPayload != DefaultMaxClearPayload {
		t.Errorf("MaxClearPayload = %d, want %d", rules.Oracle.MaxClearPayload, DefaultMaxClearPayload)
	}
}

// TestFakeNetRules verifies the local development preset disables cooldowns
// entirely so tests can drive the engine without waiting.
func TestFakeNetRules(t *testing.T) {
	rules := FakeNetRules()

	if rules.Name != "fake" {
		t.Errorf("Name = %q, want 'fake'", rules.Name)
	}
	if rules.NetworkID != FakeNetworkID {
		t.Errorf("NetworkID = %d, want %d", rules.NetworkID, FakeNetworkID)
	}
	if rules.Protocol.CooldownSeconds != 0 {
		t.Errorf("CooldownSeconds = %d, want 0", rules.Protocol.CooldownSeconds)
	}
	if err := rules.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

// TestRulesValidate verifies that inconsistent rule sets are rejected.
func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{"empty name", func(r *Rules) { r.Name = "" }},
		{"zero network id", func(r *Rules) { r.NetworkID = 0 }},
		{"zero payload bound", func(r *Rules) { r.Oracle.MaxClearPayload = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := MainNetRules()
			tt.mutate(&rules)
			if err := rules.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

// TestRulesJSON verifies that rules survive a JSON round trip, so a
// deployment can pin its rules in a config file.
func TestRulesJSON(t *testing.T) {
	orig := TestNetRules()
	orig.Upgrades.StrictHandles = true

	b, err := json.Marshal(&orig)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got Rules
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got != orig {
		t.Errorf("round trip mismatch: got %s, want %s", got.String(), orig.String())
	}
}

// TestRulesCopy verifies Copy yields an equal, independent value.
func TestRulesCopy(t *testing.T) {
	orig := MainNetRules()
	cp := orig.Copy()
	if cp != orig {
		t.Error("Copy() is not equal to the original")
	}
	cp.Protocol.CooldownSeconds = 1
	if orig.Protocol.CooldownSeconds == 1 {
		t.Error("mutating the copy affected the original")
	}
}
