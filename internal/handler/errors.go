package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail: {"error": {"code": ..., "message": ...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// errorKind maps a domain sentinel to its HTTP status, machine-readable code
// and the message used when the error carries no detail of its own.
type errorKind struct {
	sentinel error
	status   int
	code     string
	fallback string
}

var errorKinds = []errorKind{
	{domain.ErrNotFound, http.StatusNotFound, "not_found", "not found or access denied"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden", "forbidden"},
	{domain.ErrConflict, http.StatusConflict, "conflict", "conflict"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error", "invalid input"},
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// badRequest rejects a request before it reaches the service layer
// (malformed body, bad path or query parameter).
func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "bad_request", message)
}

// respondError maps a service error onto the error envelope. Anything that
// is not a known domain sentinel is logged and reported as a bare 500 so
// storage details never reach the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.sentinel) {
			msg := unwrapMessage(err, k.sentinel)
			if msg == "" {
				msg = k.fallback
			}
			writeError(w, k.status, k.code, msg)
			return
		}
	}
	s.log.ErrorContext(r.Context(), "request failed",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// unwrapMessage extracts the human-readable part that follows the sentinel
// in a wrapped error, or "" when there is none.
// e.g. "service.TripService.CreateTrip: validation error: name is required" -> "name is required"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	return msg[i+len(marker):]
}
