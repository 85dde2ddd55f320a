package oracle

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestClearValuesCodec verifies the canonical three-word payload exchanged
// with the decryption oracle.
func TestClearValuesCodec(t *testing.T) {
	require := require.New(t)

	raw, err := PackClearValues(big.NewInt(7), big.NewInt(60), big.NewInt(90))
	require.NoError(err)
	// Three ABI-encoded uint256 words.
	require.Len(raw, 96)

	proposalID, targetValue, prediction, err := UnpackClearValues(raw)
	require.NoError(err)
	require.Equal(0, proposalID.Cmp(big.NewInt(7)))
	require.Equal(0, targetValue.Cmp(big.NewInt(60)))
	require.Equal(0, prediction.Cmp(big.NewInt(90)))
}

// TestUnpackClearValuesMalformed verifies that deviations from the expected
// layout yield ErrMalformedClearValues, so the engine can classify the
// rejection.
func TestUnpackClearValuesMalformed(t *testing.T) {
	require := require.New(t)

	// Case 1: Empty payload.
	{
		_, _, _, err := UnpackClearValues(nil)
		require.Error(err)
		require.True(errors.Is(err, ErrMalformedClearValues))
	}

	// Case 2: Truncated payload (two words instead of three).
	{
		_, _, _, err := UnpackClearValues(make([]byte, 64))
		require.Error(err)
		require.True(errors.Is(err, ErrMalformedClearValues))
	}
}
