// Package oracle defines the interface boundary between the governance
// engine and the external decryption service. The service decrypts opaque
// handles off the engine's critical path and eventually delivers the clear
// values back together with a proof; the engine validates the delivery but
// delegates all cryptographic verification to the Verifier.
//
// The clear-values blob exchanged with the oracle is ABI-encoded as three
// uint256 words (proposal id, target value, market prediction), in the same
// canonical order as Proposal.Handles.
package oracle

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/rony4d/veilgov/inter"
	"github.com/rony4d/veilgov/inter/cipherhandle"
)

// Service accepts decryption requests against a set of handles.
type Service interface {
	// SubmitRequest issues an asynchronous decryption request for exactly
	// the given handles and returns a freshly allocated, globally unique
	// request id. The clear values arrive later through the engine's
	// delivery operation; SubmitRequest never blocks on decryption.
	SubmitRequest(handles []cipherhandle.Handle) (inter.RequestID, error)
}

// Verifier checks that delivered clear values are the authentic decryption
// of the handles referenced by a request id. Verification is a trusted
// external primitive; the engine treats it as a black box.
type Verifier interface {
	VerifyProof(request inter.RequestID, clearValues []byte, proof []byte) bool
}

// ErrMalformedClearValues is returned when a clear-values blob cannot be
// decoded as the canonical three-word payload.
var ErrMalformedClearValues = errors.New("malformed clear values payload")

var clearValuesArgs abi.Arguments

func init() {
	uint256T, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	clearValuesArgs = abi.Arguments{
		{Name: "proposalId", Type: uint256T},
		{Name: "targetValue", Type: uint256T},
		{Name: "marketPrediction", Type: uint256T},
	}
}

// PackClearValues encodes the decrypted triple into the canonical blob.
func PackClearValues(proposalID, targetValue, marketPrediction *big.Int) ([]byte, error) {
	return clearValuesArgs.Pack(proposalID, targetValue, marketPrediction)
}

// UnpackClearValues decodes the canonical blob back into the decrypted
// triple. Any deviation from the expected layout yields
// ErrMalformedClearValues.
func UnpackClearValues(raw []byte) (proposalID, targetValue, marketPrediction *big.Int, err error) {
	values, err := clearValuesArgs.Unpack(raw)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrMalformedClearValues, err)
	}
	if len(values) != 3 {
		return nil, nil, nil, ErrMalformedClearValues
	}
	var ok bool
	if proposalID, ok = values[0].(*big.Int); !ok {
		return nil, nil, nil, ErrMalformedClearValues
	}
	if targetValue, ok = values[1].(*big.Int); !ok {
		return nil, nil, nil, ErrMalformedClearValues
	}
	if marketPrediction, ok = values[2].(*big.Int); !ok {
		return nil, nil, nil, ErrMalformedClearValues
	}
	return proposalID, targetValue, marketPrediction, nil
}
