// Package shared holds response helpers used by every HTTP handler so error
// envelopes and JSON encoding stay consistent across verticals.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "civreg/pkg/domain-errors"
)

// WriteJSON encodes v with the given status. Encoding failures after the
// header is written can only be logged by the caller's middleware.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope. Only the
// code and the user-facing message are rendered; wrapped causes stay internal,
// and server-side failures get a generic message so storage details never
// reach clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := "internal error"
	var domainErr dErrors.Error
	if errors.As(err, &domainErr) && code != dErrors.CodeInternal && code != dErrors.CodeIO {
		message = domainErr.Message
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error":             string(code),
		"error_description": message,
	})
}
