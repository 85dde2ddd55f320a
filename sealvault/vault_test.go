package sealvault

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/veilgov/inter/cipherhandle"
)

// TestMaterialize verifies that materialized handles behave like fresh
// encryptions: initialized, well-formed, and distinct even for equal
// plaintexts.
func TestMaterialize(t *testing.T) {
	require := require.New(t)
	v := NewMemVault([]byte("salt"))

	a := v.Materialize(42, cipherhandle.Kinds.Uint64)
	b := v.Materialize(42, cipherhandle.Kinds.Uint64)

	require.Equal(cipherhandle.Kinds.Uint64, a.Kind)
	require.Len(a.Raw, cipherhandle.RawLen)
	require.True(v.IsInitialized(a))
	require.True(v.IsInitialized(b))

	// Two materializations of the same value are distinct handles.
	require.NotEqual(a, b)
}

// TestIsInitialized verifies that empty and fabricated handles read as
// uninitialized.
func TestIsInitialized(t *testing.T) {
	require := require.New(t)
	v := NewMemVault([]byte("salt"))

	require.False(v.IsInitialized(cipherhandle.Handle{}))

	forged := cipherhandle.Handle{Kind: cipherhandle.Kinds.Uint64, Raw: make([]byte, cipherhandle.RawLen)}
	require.False(v.IsInitialized(forged))
}

// TestSaltSeparation verifies that handles of one vault read as
// uninitialized in another: the salt separates handle spaces of independent
// deployments.
func TestSaltSeparation(t *testing.T) {
	require := require.New(t)

	v1 := NewMemVault([]byte("one"))
	v2 := NewMemVault([]byte("two"))

	h := v1.Materialize(7, cipherhandle.Kinds.Uint64)
	require.True(v1.IsInitialized(h))
	require.False(v2.IsInitialized(h))
}

// TestReveal verifies the oracle-side plaintext access path.
func TestReveal(t *testing.T) {
	require := require.New(t)
	v := NewMemVault([]byte("salt"))

	h := v.Materialize(90, cipherhandle.Kinds.Uint64)

	value, ok := v.Reveal(h)
	require.True(ok)
	require.Equal(uint64(90), value)

	_, ok = v.Reveal(cipherhandle.Handle{Kind: cipherhandle.Kinds.Uint64, Raw: make([]byte, cipherhandle.RawLen)})
	require.False(ok)
}

// TestFingerprintOf verifies that handle fingerprints are deterministic per
// handle and distinct across handles.
func TestFingerprintOf(t *testing.T) {
	require := require.New(t)
	v := NewMemVault([]byte("salt"))

	a := v.Materialize(1, cipherhandle.Kinds.Uint64)
	b := v.Materialize(1, cipherhandle.Kinds.Uint64)

	require.Equal(v.FingerprintOf(a), v.FingerprintOf(a))
	require.NotEqual(v.FingerprintOf(a), v.FingerprintOf(b))
}
