// Package cipherhandle provides abstractions for handling references to
// confidential values. It defines a generic Handle structure that decouples
// the ciphertext kind from the raw handle bytes and provides utilities for
// serialization, deserialization, and hex string conversion. The governance
// engine never reads the plaintext behind a handle; it only compares handle
// identity and initialization state, so the engine works with handles without
// needing to know anything about the underlying encryption scheme.

package cipherhandle

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// RawLen is the byte length of the opaque part of a handle. Handles are
// digest-sized references into the confidential-value subsystem.
const RawLen = 32

// Handle is an opaque reference to a confidential value.
// It decouples the ciphertext kind from the raw reference bytes, allowing
// support for different encrypted integer widths in the future.
type Handle struct {
	// Kind identifies the ciphertext type the handle points at.
	Kind uint8
	// Raw contains the opaque reference bytes.
	Raw []byte
}

// Kinds defines the supported ciphertext kind constants.
// Currently only 64-bit encrypted unsigned integers are used by the protocol.
var Kinds = struct {
	Uint64 uint8
}{
	// Uint64 identifies a handle referencing an encrypted uint64.
	Uint64: 0x05,
}

// Empty reports whether the handle is uninitialized or zeroed out.
// A default-constructed Handle (no kind, no raw bytes) is empty; the
// confidential-value subsystem never produces such a handle.
func (h Handle) Empty() bool {
	return len(h.Raw) == 0 && h.Kind == 0
}

// String returns the hexadecimal representation of the handle, prefixed
// with "0x". It includes the Kind byte followed by the Raw bytes.
func (h Handle) String() string {
	return "0x" + common.Bytes2Hex(h.Bytes())
}

// Bytes returns the flat byte representation of the handle.
// The format is [Kind byte] + [Raw bytes...].
func (h Handle) Bytes() []byte {
	return append([]byte{h.Kind}, h.Raw...)
}

// Copy creates a deep copy of the Handle.
// The Raw field is a slice, so a plain assignment would share memory.
func (h Handle) Copy() Handle {
	return Handle{
		Kind: h.Kind,
		Raw:  common.CopyBytes(h.Raw),
	}
}

// FromString parses a hex string (with or without "0x" prefix) into a Handle.
func FromString(str string) (Handle, error) {
	return FromBytes(common.FromHex(str))
}

// FromBytes reconstructs a Handle from a flat byte slice.
// The first byte is the Kind, the rest is the Raw reference.
func FromBytes(b []byte) (Handle, error) {
	if len(b) == 0 {
		return Handle{}, errors.New("empty handle")
	}
	if len(b)-1 != RawLen {
		return Handle{}, errors.New("wrong handle length")
	}
	return Handle{b[0], b[1:]}, nil
}

// MarshalText implements the encoding.TextMarshaler interface, so a Handle
// marshals into a JSON hex string with standard Go JSON encoding.
func (h *Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (h *Handle) UnmarshalText(input []byte) error {
	res, err := FromString(string(input))
	if err != nil {
		return err
	}
	*h = res
	return nil
}
