// Package handler is the HTTP layer: it decodes requests, calls services,
// and encodes responses. No business rules live here.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/task-manager/internal/apperror"
)

// ErrorResponse is the single error shape every endpoint returns:
//
//	{"error": "<message>"}
//
// One field, always the same name, whatever the status code — clients parse
// errors one way.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before WriteHeader, and WriteHeader before the body —
// once Encode writes, header changes are silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its status and sends the error body.
//
// For taxonomy errors the client-facing message comes from the AppError
// itself, not from whatever wrapping context was added on the way up — the
// wrapping is for logs, the Message is for clients. Anything outside the
// taxonomy is a 500 with the message passed through as-is; failures here are
// not retried, by us or (we hope) by the caller.
func writeError(w http.ResponseWriter, err error) {
	message := err.Error()

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	writeJSON(w, apperror.Status(err), ErrorResponse{Error: message})
}

// decodeJSON reads the request body into dst, translating malformed JSON
// into the generic field-validation failure.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.BadRequest("", "Please, check if all the fields are filled correctly!")
	}
	return nil
}
