package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// newRequestID tags every response so a client report can be matched to
// server logs.
func newRequestID() string { return "req_" + uuid.NewString() }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// unmarshalStrict decodes an already-captured body the same way readJSON
// decodes a stream. Signed endpoints read the body before verification, so
// they cannot decode from the request directly.
func unmarshalStrict(body []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"request_id": newRequestID(),
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}
