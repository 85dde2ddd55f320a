package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/veilgov/inter"
	"github.com/rony4d/veilgov/oracle"
)

// settle drives a full request/delivery cycle for the given plaintext
// triple in a fresh batch and returns the outcome.
func settle(t *testing.T, e *env, proposalID, targetValue, prediction uint64) Outcome {
	t.Helper()
	require := require.New(t)

	batch, err := e.eng.OpenBatch(e.admin)
	require.NoError(err)
	e.submit(t, e.subs[0], proposalID, targetValue, prediction)

	id, err := e.eng.RequestDecision(e.subs[0], batch)
	require.NoError(err)

	clearValues, proof, err := e.orc.Deliver(id)
	require.NoError(err)
	outcome, err := e.eng.DeliverDecryption(id, clearValues, proof)
	require.NoError(err)
	return outcome
}

// TestDecisionSemantics verifies the derived decision: approved exactly
// when the market prediction reaches the target value, with a tie passing.
func TestDecisionSemantics(t *testing.T) {
	e := newEnv(t, nil)

	tests := []struct {
		name       string
		target     uint64
		prediction uint64
		approved   bool
	}{
		{"prediction above target", 50, 75, true},
		{"tie passes", 80, 80, true},
		{"prediction below target", 80, 79, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			outcome := settle(t, e, 7, tt.target, tt.prediction)
			require.Equal(tt.approved, outcome.Approved)
			require.Equal(0, outcome.TargetValue.Cmp(new(big.Int).SetUint64(tt.target)))
			require.Equal(0, outcome.MarketPrediction.Cmp(new(big.Int).SetUint64(tt.prediction)))
		})
	}
}

// TestRequestDecisionGates verifies the preconditions of issuing a request:
// submitter privilege, a current batch id, and a fully initialized proposal.
func TestRequestDecisionGates(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, nil)

	// Case 1: No batch, no proposal.
	{
		_, err := e.eng.RequestDecision(e.subs[0], 0)
		require.ErrorIs(err, ErrProposalNotInitialized)
	}

	batch, err := e.eng.OpenBatch(e.admin)
	require.NoError(err)

	// Case 2: Only submitters may request decisions.
	{
		_, err := e.eng.RequestDecision(e.admin, batch)
		require.ErrorIs(err, ErrAccessDenied)
	}

	// Case 3: The batch exists but holds no proposal yet.
	{
		_, err := e.eng.RequestDecision(e.subs[0], batch)
		require.ErrorIs(err, ErrProposalNotInitialized)
	}

	e.submit(t, e.subs[0], 7, 60, 90)

	// Case 4: A stale batch id is rejected once a newer batch is current.
	{
		_, err := e.eng.OpenBatch(e.admin)
		require.NoError(err)
		_, err = e.eng.RequestDecision(e.subs[0], batch)
		require.ErrorIs(err, ErrInvalidBatch)
	}
}

// TestRequestDecisionAfterClose verifies that closing a batch does not
// prevent settling it: the id stays current until a newer batch opens.
func TestRequestDecisionAfterClose(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, nil)

	batch, err := e.eng.OpenBatch(e.admin)
	require.NoError(err)
	e.submit(t, e.subs[0], 7, 60, 90)
	require.NoError(e.eng.CloseBatch(e.admin))

	id, err := e.eng.RequestDecision(e.subs[0], batch)
	require.NoError(err)

	ctx, ok := e.eng.Context(id)
	require.True(ok)
	require.Equal(batch, ctx.Batch)
	require.False(ctx.Processed)
}

// TestDeliveryReplay verifies exactly-once settlement: a second delivery of
// the same request is rejected and changes nothing, even with a perfectly
// valid payload.
func TestDeliveryReplay(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, nil)

	batch, err := e.eng.OpenBatch(e.admin)
	require.NoError(err)
	e.submit(t, e.subs[0], 7, 60, 90)
	id, err := e.eng.RequestDecision(e.subs[0], batch)
	require.NoError(err)

	clearValues, proof, err := e.orc.Deliver(id)
	require.NoError(err)

	outcome, err := e.eng.DeliverDecryption(id, clearValues, proof)
	require.NoError(err)
	require.True(outcome.Approved)

	// The identical delivery again: rejected, context stays processed.
	_, err = e.eng.DeliverDecryption(id, clearValues, proof)
	require.ErrorIs(err, ErrReplayAttempt)

	ctx, ok := e.eng.Context(id)
	require.True(ok)
	require.True(ctx.Processed)
}

// TestDeliveryFreshness verifies the fingerprint check: if the stored
// handles changed between request and delivery, the delivery is rejected as
// stale even though its proof is valid.
func TestDeliveryFreshness(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, nil)

	batch, err := e.eng.OpenBatch(e.admin)
	require.NoError(err)
	e.submit(t, e.subs[0], 7, 60, 90)
	id, err := e.eng.RequestDecision(e.subs[0], batch)
	require.NoError(err)
	clearValues, proof, err := e.orc.Deliver(id)
	require.NoError(err)

	// The proposal is overwritten while the request is in flight.
	e.submit(t, e.subs[1], 8, 70, 10)

	_, err = e.eng.DeliverDecryption(id, clearValues, proof)
	require.ErrorIs(err, ErrStateMismatch)

	// The stale request is spent for good, but a fresh request over the
	// new content settles normally.
	ctx, ok := e.eng.Context(id)
	require.True(ok)
	require.False(ctx.Processed)

	id2, err := e.eng.RequestDecision(e.subs[0], batch)
	require.NoError(err)
	clearValues, proof, err = e.orc.Deliver(id2)
	require.NoError(err)
	outcome, err := e.eng.DeliverDecryption(id2, clearValues, proof)
	require.NoError(err)
	require.False(outcome.Approved)
}

// TestDeliveryUnknownAndForged verifies rejection of deliveries that do not
// correspond to an issued request or carry an invalid proof.
func TestDeliveryUnknownAndForged(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, nil)

	batch, err := e.eng.OpenBatch(e.admin)
	require.NoError(err)
	e.submit(t, e.subs[0], 7, 60, 90)
	id, err := e.eng.RequestDecision(e.subs[0], batch)
	require.NoError(err)
	clearValues, proof, err := e.orc.Deliver(id)
	require.NoError(err)

	// Case 1: Unknown request id.
	{
		_, err := e.eng.DeliverDecryption("req_never-issued", clearValues, proof)
		require.ErrorIs(err, ErrUnknownRequest)
	}

	// Case 2: Valid proof over tampered clear values.
	{
		tampered, err := oracle.PackClearValues(big.NewInt(7), big.NewInt(60), big.NewInt(0))
		require.NoError(err)
		_, err = e.eng.DeliverDecryption(id, tampered, proof)
		require.ErrorIs(err, ErrInvalidProof)
	}

	// Case 3: Garbage proof.
	{
		_, err := e.eng.DeliverDecryption(id, clearValues, []byte{0x01})
		require.ErrorIs(err, ErrInvalidProof)
	}

	// None of the rejections consumed the request.
	outcome, err := e.eng.DeliverDecryption(id, clearValues, proof)
	require.NoError(err)
	require.True(outcome.Approved)
}

// TestDeliveryMalformedPayload verifies the payload checks running after
// proof verification: an oversized blob and an undecodable blob are both
// rejected without consuming the request.
func TestDeliveryMalformedPayload(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, nil)

	batch, err := e.eng.OpenBatch(e.admin)
	require.NoError(err)
	e.submit(t, e.subs[0], 7, 60, 90)
	id, err := e.eng.RequestDecision(e.subs[0], batch)
	require.NoError(err)

	// Case 1: Oversized payload, correctly signed.
	{
		huge := make([]byte, int(e.eng.Rules().Oracle.MaxClearPayload)+1)
		proof, err := e.orc.Sign(id, huge)
		require.NoError(err)
		_, err = e.eng.DeliverDecryption(id, huge, proof)
		require.ErrorIs(err, ErrMalformedPayload)
	}

	// Case 2: Undecodable payload, correctly signed.
	{
		junk := []byte{0xde, 0xad, 0xbe, 0xef}
		proof, err := e.orc.Sign(id, junk)
		require.NoError(err)
		_, err = e.eng.DeliverDecryption(id, junk, proof)
		require.ErrorIs(err, ErrMalformedPayload)
	}

	// The request is still alive.
	ctx, ok := e.eng.Context(id)
	require.True(ok)
	require.False(ctx.Processed)
}

// TestConcurrentRequests verifies that multiple outstanding requests do not
// block each other and settle independently, in any order.
func TestConcurrentRequests(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, nil)

	batch, err := e.eng.OpenBatch(e.admin)
	require.NoError(err)
	e.submit(t, e.subs[0], 7, 60, 90)

	id1, err := e.eng.RequestDecision(e.subs[0], batch)
	require.NoError(err)
	id2, err := e.eng.RequestDecision(e.subs[1], batch)
	require.NoError(err)
	require.NotEqual(id1, id2)

	cv1, pf1, err := e.orc.Deliver(id1)
	require.NoError(err)
	cv2, pf2, err := e.orc.Deliver(id2)
	require.NoError(err)

	// Settle in reverse order of issuance.
	out2, err := e.eng.DeliverDecryption(id2, cv2, pf2)
	require.NoError(err)
	require.True(out2.Approved)
	out1, err := e.eng.DeliverDecryption(id1, cv1, pf1)
	require.NoError(err)
	require.True(out1.Approved)
}

// TestDecisionRecord verifies the settlement audit record: it carries the
// decrypted values and the decision, so the outcome is auditable without
// re-contacting the oracle.
func TestDecisionRecord(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, nil)

	outcome := settle(t, e, 7, 60, 90)

	rec := e.rec.last()
	require.Equal(inter.RecordDecryptionCompleted, rec.Type)
	require.Equal(outcome.Request, rec.Request)
	require.Equal(outcome.Batch, rec.Batch)

	body, err := inter.DecodeDecisionBody(rec.Body)
	require.NoError(err)
	require.Equal(0, body.ProposalID.Cmp(big.NewInt(7)))
	require.Equal(0, body.TargetValue.Cmp(big.NewInt(60)))
	require.Equal(0, body.MarketPrediction.Cmp(big.NewInt(90)))
	require.True(body.Approved)
}
