// Package sealvault abstracts the confidential-value subsystem behind the
// governance engine. The engine never sees plaintext: it holds opaque
// handles produced by a Vault and only ever asks the Vault whether a handle
// is initialized and what its fingerprint bytes are. Any implementation
// satisfying the Vault interface is sufficient to run the protocol; real
// deployments back it with confidential-compute infrastructure, tests and
// fake networks use the in-memory MemVault.
package sealvault

import (
	"encoding/binary"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/veilgov/inter/cipherhandle"
)

// Vault is the interface consumed by the governance engine.
type Vault interface {
	// Materialize produces a fresh initialized handle referencing the
	// given raw value. Two Materialize calls with the same value return
	// distinct handles, like two encryptions of the same plaintext.
	Materialize(value uint64, kind uint8) cipherhandle.Handle

	// IsInitialized reports whether the handle was produced by this
	// subsystem, as opposed to a default or fabricated handle.
	IsInitialized(h cipherhandle.Handle) bool

	// FingerprintOf returns collision-resistant bytes identifying the
	// handle's content for inclusion in a request fingerprint.
	FingerprintOf(h cipherhandle.Handle) []byte
}

// MemVault is an in-memory Vault. Handles are keccak-derived references into
// a registry guarded by a mutex. It stands in for real confidential compute:
// the "ciphertext" is just a digest, and the plaintext is kept in the
// registry so the local dev oracle can reveal it off the engine's path.
type MemVault struct {
	mu     sync.Mutex
	salt   []byte
	serial uint64
	values map[string]uint64
}

// NewMemVault creates an empty vault. The salt separates handle spaces of
// independent vaults, so handles from one vault read as uninitialized in
// another.
func NewMemVault(salt []byte) *MemVault {
	return &MemVault{
		salt:   append([]byte{}, salt...),
		values: make(map[string]uint64),
	}
}

// Materialize implements Vault.
func (v *MemVault) Materialize(value uint64, kind uint8) cipherhandle.Handle {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.serial++
	var serial [8]byte
	binary.BigEndian.PutUint64(serial[:], v.serial)
	var val [8]byte
	binary.BigEndian.PutUint64(val[:], value)

	raw := crypto.Keccak256(v.salt, []byte{kind}, serial[:], val[:])
	h := cipherhandle.Handle{Kind: kind, Raw: raw}
	v.values[string(h.Bytes())] = value
	return h
}

// IsInitialized implements Vault.
func (v *MemVault) IsInitialized(h cipherhandle.Handle) bool {
	if h.Empty() {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.values[string(h.Bytes())]
	return ok
}

// FingerprintOf implements Vault. The handle bytes are already a registry
// digest, so the fingerprint is a domain-separated hash over them.
func (v *MemVault) FingerprintOf(h cipherhandle.Handle) []byte {
	return crypto.Keccak256([]byte("veilgov/handle-fp"), h.Bytes())
}

// Reveal returns the plaintext behind a handle. It is not part of the Vault
// interface: the engine has no access to plaintext, only the decryption
// oracle does. The local dev oracle uses Reveal to play that role.
func (v *MemVault) Reveal(h cipherhandle.Handle) (uint64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	value, ok := v.values[string(h.Bytes())]
	return value, ok
}
