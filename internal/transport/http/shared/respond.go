// Package shared centralizes JSON response shaping so every handler emits
// the same envelopes.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "account-gateway/pkg/domain-errors"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the gateway's error envelope.
// Client errors carry a bare error string; 500-class failures use the
// success/error shape so mobile clients can distinguish operation failure
// from request rejection.
func WriteError(w http.ResponseWriter, err error) {
	status := dErrors.ToHTTPStatus(dErrors.CodeOf(err))
	message := dErrors.MessageOf(err)

	if status >= http.StatusInternalServerError {
		WriteJSON(w, status, map[string]any{
			"success": false,
			"error":   message,
		})
		return
	}
	WriteJSON(w, status, map[string]string{
		"error": message,
	})
}
