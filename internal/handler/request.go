package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/backend/internal/auth"
)

// callerID returns the authenticated user's ID. It writes a 401 and returns
// false when the request reached a handler without a principal.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok || p.ID == uuid.Nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return uuid.Nil, false
	}
	return p.ID, true
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads the request body into dst. It writes 413 when the body
// exceeded the size limit and 400 for anything else it cannot decode.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		badRequest(w, "request body is required")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		case errors.Is(err, io.EOF):
			badRequest(w, "request body is required")
		default:
			badRequest(w, "invalid request body: "+err.Error())
		}
		return false
	}
	return true
}

// queryInt parses an optional positive integer query parameter.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		badRequest(w, name+" must be a positive integer")
		return nil, false
	}
	return &n, true
}
