package httpapi

import (
	"encoding/json"
	"net/http"

	"neurod/internal/infer"
	"neurod/internal/manager"
	"neurod/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusForError maps well-known domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case infer.IsInvalidPrompt(err):
		return http.StatusBadRequest
	case manager.IsEndpointNotFound(err):
		return http.StatusNotFound
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests
	case infer.IsShapeMismatch(err):
		return http.StatusBadGateway
	case infer.IsEndpointUnavailable(err):
		return http.StatusServiceUnavailable
	case infer.IsEndpointTimeout(err):
		return http.StatusGatewayTimeout
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
