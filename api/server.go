// Package api exposes the governance engine over HTTP. Administrator and
// submitter operations are authenticated by a secp256k1 signature over the
// request, mirroring the address-based identities of the protocol itself;
// the signed digest includes a timestamp so captured requests go stale.
// The oracle delivery endpoint is public: a delivery is accepted or
// rejected purely on its proof, so any party may relay one.
package api

import (
	"errors"
	"io/ioutil"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/rony4d/veilgov/engine"
	"github.com/rony4d/veilgov/inter"
	"github.com/rony4d/veilgov/inter/cipherhandle"
)

// maxBodyBytes bounds request bodies; governance payloads are tiny.
const maxBodyBytes = 1 << 16

// Server routes HTTP calls into one Engine.
type Server struct {
	eng *engine.Engine
}

// NewServer creates a Server around the given engine.
func NewServer(eng *engine.Engine) *Server {
	return &Server{eng: eng}
}

// Router builds the HTTP routing table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/status", s.handleStatus)
		v1.Get("/submitters/{id}", s.handleSubmitterStatus)
		v1.Get("/proposals/{batch}", s.handleGetProposal)
		v1.Get("/requests/{id}", s.handleGetContext)

		v1.Post("/admin/transfer", s.signed(s.handleTransfer))
		v1.Post("/admin/authorize", s.signed(s.handleAuthorize))
		v1.Post("/admin/revoke", s.signed(s.handleRevoke))
		v1.Post("/admin/pause", s.signed(s.handlePause))
		v1.Post("/admin/unpause", s.signed(s.handleUnpause))
		v1.Post("/admin/cooldown", s.signed(s.handleSetCooldown))
		v1.Post("/batches/open", s.signed(s.handleOpenBatch))
		v1.Post("/batches/close", s.signed(s.handleCloseBatch))

		v1.Post("/proposals", s.signed(s.handleSubmitProposal))
		v1.Post("/decisions", s.signed(s.handleRequestDecision))

		// Public delivery channel of the decryption oracle.
		v1.Post("/oracle/deliveries", s.handleDelivery)
	})
	return r
}

// signedHandler is an operation handler that already knows who the caller
// is and what the raw body was.
type signedHandler func(w http.ResponseWriter, r *http.Request, caller common.Address, body []byte)

// signed wraps a handler with body capture and caller recovery.
func (s *Server) signed(h signedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_BODY", err.Error())
			return
		}
		caller, err := recoverCaller(r, body, time.Now())
		if err != nil {
			code := "BAD_SIGNATURE"
			if errors.Is(err, errStaleSignature) {
				code = "STALE_SIGNATURE"
			}
			writeError(w, http.StatusUnauthorized, code, err.Error())
			return
		}
		h(w, r, caller, body)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	batch, open := s.eng.CurrentBatch()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request_id":       newRequestID(),
		"network":          s.eng.Rules().Name,
		"instance":         s.eng.InstanceID().Hex(),
		"admin":            s.eng.Admin().Hex(),
		"paused":           s.eng.Paused(),
		"current_batch":    batch,
		"batch_open":       open,
		"cooldown_seconds": s.eng.CooldownSeconds(),
	})
}

func (s *Server) handleSubmitterStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !common.IsHexAddress(id) {
		writeError(w, http.StatusBadRequest, "BAD_ADDRESS", "not a hex address")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request_id": newRequestID(),
		"submitter":  common.HexToAddress(id).Hex(),
		"authorized": s.eng.IsSubmitter(common.HexToAddress(id)),
	})
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseUint(chi.URLParam(r, "batch"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_BATCH", "not a batch id")
		return
	}
	p, ok := s.eng.ProposalOf(inter.BatchID(n))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no proposal for batch")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request_id":        newRequestID(),
		"batch":             n,
		"proposal_id":       p.ProposalID.String(),
		"target_value":      p.TargetValue.String(),
		"market_prediction": p.MarketPrediction.String(),
	})
}

func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	ctx, ok := s.eng.Context(inter.RequestID(chi.URLParam(r, "id")))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown request id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request_id":  newRequestID(),
		"batch":       ctx.Batch,
		"fingerprint": ctx.Fingerprint.Hex(),
		"processed":   ctx.Processed,
	})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request, caller common.Address, body []byte) {
	var req struct {
		Next string `json:"next"`
	}
	if err := decodeBody(w, body, &req); err != nil {
		return
	}
	if !common.IsHexAddress(req.Next) {
		writeError(w, http.StatusBadRequest, "BAD_ADDRESS", "next is not a hex address")
		return
	}
	s.finish(w, s.eng.TransferAdmin(caller, common.HexToAddress(req.Next)), nil)
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request, caller common.Address, body []byte) {
	var req struct {
		Submitter string `json:"submitter"`
	}
	if err := decodeBody(w, body, &req); err != nil {
		return
	}
	if !common.IsHexAddress(req.Submitter) {
		writeError(w, http.StatusBadRequest, "BAD_ADDRESS", "submitter is not a hex address")
		return
	}
	s.finish(w, s.eng.AuthorizeSubmitter(caller, common.HexToAddress(req.Submitter)), nil)
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request, caller common.Address, body []byte) {
	var req struct {
		Submitter string `json:"submitter"`
	}
	if err := decodeBody(w, body, &req); err != nil {
		return
	}
	if !common.IsHexAddress(req.Submitter) {
		writeError(w, http.StatusBadRequest, "BAD_ADDRESS", "submitter is not a hex address")
		return
	}
	s.finish(w, s.eng.RevokeSubmitter(caller, common.HexToAddress(req.Submitter)), nil)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request, caller common.Address, body []byte) {
	s.finish(w, s.eng.Pause(caller), nil)
}

func (s *Server) handleUnpause(w http.ResponseWriter, r *http.Request, caller common.Address, body []byte) {
	s.finish(w, s.eng.Unpause(caller), nil)
}

func (s *Server) handleSetCooldown(w http.ResponseWriter, r *http.Request, caller common.Address, body []byte) {
	var req struct {
		Seconds uint64 `json:"seconds"`
	}
	if err := decodeBody(w, body, &req); err != nil {
		return
	}
	s.finish(w, s.eng.SetCooldown(caller, req.Seconds), nil)
}

func (s *Server) handleOpenBatch(w http.ResponseWriter, r *http.Request, caller common.Address, body []byte) {
	batch, err := s.eng.OpenBatch(caller)
	s.finish(w, err, map[string]interface{}{"batch": batch})
}

func (s *Server) handleCloseBatch(w http.ResponseWriter, r *http.Request, caller common.Address, body []byte) {
	s.finish(w, s.eng.CloseBatch(caller), nil)
}

func (s *Server) handleSubmitProposal(w http.ResponseWriter, r *http.Request, caller common.Address, body []byte) {
	var req struct {
		ProposalID       string `json:"proposal_id"`
		TargetValue      string `json:"target_value"`
		MarketPrediction string `json:"market_prediction"`
	}
	if err := decodeBody(w, body, &req); err != nil {
		return
	}
	handles := make([]cipherhandle.Handle, 3)
	for i, raw := range []string{req.ProposalID, req.TargetValue, req.MarketPrediction} {
		h, err := cipherhandle.FromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_HANDLE", err.Error())
			return
		}
		handles[i] = h
	}
	s.finish(w, s.eng.SubmitProposal(caller, handles[0], handles[1], handles[2]), nil)
}

func (s *Server) handleRequestDecision(w http.ResponseWriter, r *http.Request, caller common.Address, body []byte) {
	var req struct {
		Batch uint32 `json:"batch"`
	}
	if err := decodeBody(w, body, &req); err != nil {
		return
	}
	id, err := s.eng.RequestDecision(caller, inter.BatchID(req.Batch))
	s.finish(w, err, map[string]interface{}{"request": id})
}

func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Request     string `json:"request"`
		ClearValues string `json:"clear_values"`
		Proof       string `json:"proof"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	clearValues, err := hexutil.Decode(req.ClearValues)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_HEX", "clear_values is not 0x-hex")
		return
	}
	proof, err := hexutil.Decode(req.Proof)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_HEX", "proof is not 0x-hex")
		return
	}

	outcome, err := s.eng.DeliverDecryption(inter.RequestID(req.Request), clearValues, proof)
	if err != nil {
		status, code := errStatus(err)
		writeError(w, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request_id":        newRequestID(),
		"request":           outcome.Request,
		"batch":             outcome.Batch,
		"proposal_id":       outcome.ProposalID.String(),
		"target_value":      outcome.TargetValue.String(),
		"market_prediction": outcome.MarketPrediction.String(),
		"approved":          outcome.Approved,
	})
}

// finish writes the uniform success/error envelope of mutating endpoints.
func (s *Server) finish(w http.ResponseWriter, err error, extra map[string]interface{}) {
	if err != nil {
		status, code := errStatus(err)
		writeError(w, status, code, err.Error())
		return
	}
	resp := map[string]interface{}{"request_id": newRequestID(), "ok": true}
	for k, v := range extra {
		resp[k] = v
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeBody(w http.ResponseWriter, body []byte, dst interface{}) error {
	if err := unmarshalStrict(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return err
	}
	return nil
}

// errStatus maps protocol errors to transport status codes.
func errStatus(err error) (int, string) {
	switch {
	case errors.Is(err, engine.ErrAccessDenied):
		return http.StatusForbidden, "ACCESS_DENIED"
	case errors.Is(err, engine.ErrZeroAddress):
		return http.StatusBadRequest, "ZERO_ADDRESS"
	case errors.Is(err, engine.ErrAlreadyPaused):
		return http.StatusConflict, "ALREADY_PAUSED"
	case errors.Is(err, engine.ErrPaused):
		return http.StatusConflict, "PAUSED"
	case errors.Is(err, engine.ErrCooldownActive):
		return http.StatusTooManyRequests, "COOLDOWN_ACTIVE"
	case errors.Is(err, engine.ErrBatchClosed):
		return http.StatusConflict, "BATCH_CLOSED"
	case errors.Is(err, engine.ErrInvalidBatch):
		return http.StatusConflict, "INVALID_BATCH"
	case errors.Is(err, engine.ErrProposalNotInitialized):
		return http.StatusConflict, "PROPOSAL_NOT_INITIALIZED"
	case errors.Is(err, engine.ErrUninitializedHandle):
		return http.StatusBadRequest, "UNINITIALIZED_HANDLE"
	case errors.Is(err, engine.ErrUnknownRequest):
		return http.StatusNotFound, "UNKNOWN_REQUEST"
	case errors.Is(err, engine.ErrReplayAttempt):
		return http.StatusConflict, "REPLAY_ATTEMPT"
	case errors.Is(err, engine.ErrStateMismatch):
		return http.StatusConflict, "STATE_MISMATCH"
	case errors.Is(err, engine.ErrInvalidProof):
		return http.StatusForbidden, "INVALID_PROOF"
	case errors.Is(err, engine.ErrMalformedPayload):
		return http.StatusBadRequest, "MALFORMED_PAYLOAD"
	default:
		log.WithError(err).Error("unexpected engine error")
		return http.StatusInternalServerError, "INTERNAL"
	}
}
