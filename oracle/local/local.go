// Package local implements an in-process decryption oracle for fake
// networks and tests. It reveals plaintexts through the MemVault registry
// and signs its deliveries with a secp256k1 key, so the engine-side proof
// validation exercises the same recover-and-compare path a remote
// confidential-compute service would be held to.
package local

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/rony4d/veilgov/inter"
	"github.com/rony4d/veilgov/inter/cipherhandle"
	"github.com/rony4d/veilgov/oracle"
	"github.com/rony4d/veilgov/sealvault"
)

// Errors returned by the local oracle.
var (
	ErrUnknownRequest = errors.New("unknown request id")
	ErrUnknownHandle  = errors.New("handle does not reference a vault value")
)

// Oracle is a local decryption service. It satisfies both oracle.Service
// and oracle.Verifier.
type Oracle struct {
	key   *ecdsa.PrivateKey
	vault *sealvault.MemVault

	mu      sync.Mutex
	pending map[inter.RequestID][]cipherhandle.Handle
}

// New creates a local oracle that reveals values through the given vault
// and signs deliveries with the given key.
func New(key *ecdsa.PrivateKey, vault *sealvault.MemVault) *Oracle {
	return &Oracle{
		key:     key,
		vault:   vault,
		pending: make(map[inter.RequestID][]cipherhandle.Handle),
	}
}

// Address returns the identity the oracle signs deliveries with.
func (o *Oracle) Address() common.Address {
	return crypto.PubkeyToAddress(o.key.PublicKey)
}

// SubmitRequest implements oracle.Service. Request ids are uuid-based, so
// they are never reused or predictable by the engine.
func (o *Oracle) SubmitRequest(handles []cipherhandle.Handle) (inter.RequestID, error) {
	id := inter.RequestID("req_" + uuid.NewString())

	o.mu.Lock()
	defer o.mu.Unlock()
	snapshot := make([]cipherhandle.Handle, len(handles))
	for i, h := range handles {
		snapshot[i] = h.Copy()
	}
	o.pending[id] = snapshot

	log.WithFields(log.Fields{
		"request": id,
		"handles": len(handles),
	}).Debug("local oracle accepted decryption request")
	return id, nil
}

// Deliver produces the clear values and proof for an accepted request.
// The caller is expected to feed both into the engine's delivery operation;
// nothing is pushed automatically, which lets tests reorder or replay
// deliveries at will.
func (o *Oracle) Deliver(id inter.RequestID) (clearValues []byte, proof []byte, err error) {
	o.mu.Lock()
	handles, ok := o.pending[id]
	o.mu.Unlock()
	if !ok {
		return nil, nil, ErrUnknownRequest
	}

	values := make([]*big.Int, len(handles))
	for i, h := range handles {
		v, ok := o.vault.Reveal(h)
		if !ok {
			return nil, nil, ErrUnknownHandle
		}
		values[i] = new(big.Int).SetUint64(v)
	}
	if len(values) != 3 {
		return nil, nil, ErrUnknownHandle
	}

	clearValues, err = oracle.PackClearValues(values[0], values[1], values[2])
	if err != nil {
		return nil, nil, err
	}
	proof, err = o.Sign(id, clearValues)
	if err != nil {
		return nil, nil, err
	}
	return clearValues, proof, nil
}

// Sign produces a proof over the given request id and clear values.
// Exposed separately so tests can craft proofs over forged payloads.
func (o *Oracle) Sign(id inter.RequestID, clearValues []byte) ([]byte, error) {
	return crypto.Sign(deliveryDigest(id, clearValues), o.key)
}

// VerifyProof implements oracle.Verifier: the proof must be a recoverable
// signature by the oracle's key over the request id and clear values.
func (o *Oracle) VerifyProof(id inter.RequestID, clearValues []byte, proof []byte) bool {
	pub, err := crypto.SigToPub(deliveryDigest(id, clearValues), proof)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == o.Address()
}

func deliveryDigest(id inter.RequestID, clearValues []byte) []byte {
	return crypto.Keccak256([]byte(id), clearValues)
}
