package api

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureHeader carries the caller's secp256k1 signature over
// keccak256(request path, timestamp, request body). The recovered address is
// the caller identity used for all privilege checks; there are no accounts
// or tokens on this surface. The oracle delivery endpoint does not use it
// because deliveries are authenticated by their proof alone.
const SignatureHeader = "X-Veilgov-Signature"

// TimestampHeader carries the Unix second the request was signed at. The
// timestamp is part of the signed digest, so a captured request can only be
// replayed inside the freshness window.
const TimestampHeader = "X-Veilgov-Timestamp"

// signatureMaxAge bounds how far a signed timestamp may drift from the
// server clock, in either direction, before the request is rejected.
const signatureMaxAge = 5 * time.Minute

var (
	errBadSignature   = errors.New("missing or invalid request signature")
	errStaleSignature = errors.New("request timestamp outside the accepted window")
)

// recoverCaller extracts the caller identity from the request signature,
// rejecting timestamps outside the freshness window around now.
func recoverCaller(r *http.Request, body []byte, now time.Time) (common.Address, error) {
	ts := strings.TrimSpace(r.Header.Get(TimestampHeader))
	if ts == "" {
		return common.Address{}, errBadSignature
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return common.Address{}, errBadSignature
	}
	drift := now.Sub(time.Unix(unix, 0))
	if drift > signatureMaxAge || drift < -signatureMaxAge {
		return common.Address{}, errStaleSignature
	}

	raw := strings.TrimSpace(r.Header.Get(SignatureHeader))
	if raw == "" {
		return common.Address{}, errBadSignature
	}
	raw = strings.TrimPrefix(raw, "0x")
	sig, err := hex.DecodeString(raw)
	if err != nil || len(sig) != crypto.SignatureLength {
		return common.Address{}, errBadSignature
	}
	// Accept both raw {0,1} and Ethereum-style {27,28} recovery ids.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte{}, sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(requestDigest(r.URL.Path, ts, body), sig)
	if err != nil {
		return common.Address{}, errBadSignature
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// SignRequest produces the two header values a client attaches: the current
// timestamp and the signature binding it to the path and body.
func SignRequest(key *ecdsa.PrivateKey, path string, body []byte) (sig, timestamp string, err error) {
	return signRequestAt(key, path, body, time.Now())
}

func signRequestAt(key *ecdsa.PrivateKey, path string, body []byte, at time.Time) (string, string, error) {
	ts := strconv.FormatInt(at.Unix(), 10)
	sig, err := crypto.Sign(requestDigest(path, ts, body), key)
	if err != nil {
		return "", "", err
	}
	return "0x" + hex.EncodeToString(sig), ts, nil
}

func requestDigest(path, timestamp string, body []byte) []byte {
	return crypto.Keccak256([]byte(path), []byte(timestamp), body)
}
