package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/veilgov/inter"
)

// TestPauseUnpause verifies the lifecycle gate: pausing twice is an error,
// unpausing a live system is a silent no-op, and both transitions are
// recorded when they actually happen.
func TestPauseUnpause(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, nil)

	// Case 1: Only the administrator controls the lifecycle.
	{
		require.ErrorIs(e.eng.Pause(e.subs[0]), ErrAccessDenied)
		require.ErrorIs(e.eng.Unpause(e.subs[0]), ErrAccessDenied)
	}

	// Case 2: Unpausing a live system changes nothing and emits nothing.
	{
		before := len(e.rec.recs)
		require.NoError(e.eng.Unpause(e.admin))
		require.Len(e.rec.recs, before)
	}

	// Case 3: Pause takes effect once; a second pause is an error.
	{
		require.NoError(e.eng.Pause(e.admin))
		require.True(e.eng.Paused())
		require.Equal(inter.RecordPaused, e.rec.last().Type)

		require.ErrorIs(e.eng.Pause(e.admin), ErrAlreadyPaused)
	}

	// Case 4: Unpause resumes operation.
	{
		require.NoError(e.eng.Unpause(e.admin))
		require.False(e.eng.Paused())
		require.Equal(inter.RecordUnpaused, e.rec.last().Type)
	}
}

// TestPausedBlocksMutations verifies that every mutating operation except
// Unpause is rejected while paused, and that read-only queries stay
// available.
func TestPausedBlocksMutations(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, nil)

	// Build some state first: an open batch with a proposal.
	_, err := e.eng.OpenBatch(e.admin)
	require.NoError(err)
	e.submit(t, e.subs[0], 7, 60, 90)

	require.NoError(e.eng.Pause(e.admin))

	require.ErrorIs(e.eng.TransferAdmin(e.admin, e.subs[0]), ErrPaused)
	require.ErrorIs(e.eng.AuthorizeSubmitter(e.admin, e.subs[0]), ErrPaused)
	require.ErrorIs(e.eng.RevokeSubmitter(e.admin, e.subs[0]), ErrPaused)
	require.ErrorIs(e.eng.SetCooldown(e.admin, 10), ErrPaused)
	_, err = e.eng.OpenBatch(e.admin)
	require.ErrorIs(err, ErrPaused)
	require.ErrorIs(e.eng.CloseBatch(e.admin), ErrPaused)

	a, b, c := e.triple(1, 2, 3)
	require.ErrorIs(e.eng.SubmitProposal(e.subs[0], a, b, c), ErrPaused)
	_, err = e.eng.RequestDecision(e.subs[0], 1)
	require.ErrorIs(err, ErrPaused)

	// Read-only queries keep working.
	batch, open := e.eng.CurrentBatch()
	require.Equal(inter.BatchID(1), batch)
	require.True(open)
	_, ok := e.eng.ProposalOf(1)
	require.True(ok)
}

// TestDeliveryWhilePaused verifies that the oracle delivery path is not
// pause-gated: a request issued before the pause can still settle, so an
// emergency stop does not strand in-flight decryptions.
func TestDeliveryWhilePaused(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, nil)

	_, err := e.eng.OpenBatch(e.admin)
	require.NoError(err)
	e.submit(t, e.subs[0], 7, 60, 90)
	id, err := e.eng.RequestDecision(e.subs[0], 1)
	require.NoError(err)

	require.NoError(e.eng.Pause(e.admin))

	clearValues, proof, err := e.orc.Deliver(id)
	require.NoError(err)
	outcome, err := e.eng.DeliverDecryption(id, clearValues, proof)
	require.NoError(err)
	require.True(outcome.Approved)
}
