package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist, or when it exists but the caller is not a member
// of the trip that owns it. The two cases are never distinguished so that
// trip existence does not leak to non-members.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the resource exists and the caller is a
// member of its trip, but lacks the role the operation requires
// (e.g. a collaborator trying to delete the trip).
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write would violate a uniqueness rule:
// joining a trip twice, or a duplicate vote caught by the unique index.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrCodeSpaceExhausted is returned when no unused trip code could be found
// within the retry budget. It is an internal error, not a client error.
var ErrCodeSpaceExhausted = errors.New("trip code space exhausted")
