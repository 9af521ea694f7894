// internal/component/respond.go
//
// JSON response helpers shared by every component.  All submission
// endpoints answer with the same two-key envelope.

package component

import (
	"encoding/json"
	"net/http"

	"github.com/yanizio/krishnacabs/internal/logger"
)

// Envelope is the body of every submission response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status.  Encoding errors are logged
// only; the status line has already gone out.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Warnw("response encode failed", "err", err)
	}
}

// WriteEnvelope writes {success, message}.
func WriteEnvelope(w http.ResponseWriter, r *http.Request, status int, ok bool, msg string) {
	WriteJSON(w, r, status, Envelope{Success: ok, Message: msg})
}
