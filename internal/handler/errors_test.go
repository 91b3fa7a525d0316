package handler_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/tripplanner/backend/internal/domain"
	"github.com/pkordes/tripplanner/backend/internal/handler"
)

// TestErrorMapping checks every error kind end to end through GET /trips/{id}.
func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "not found with detail",
			err:     fmt.Errorf("service.TripService.GetTrip: %w", fmt.Errorf("%w: trip not found", domain.ErrNotFound)),
			status:  http.StatusNotFound,
			code:    "not_found",
			message: "trip not found",
		},
		{
			name:    "bare not found from the repo",
			err:     fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound),
			status:  http.StatusNotFound,
			code:    "not_found",
			message: "not found or access denied",
		},
		{
			name:    "forbidden",
			err:     fmt.Errorf("service.TripService.UpdateTrip: %w", fmt.Errorf("%w: only the trip creator can update this trip", domain.ErrForbidden)),
			status:  http.StatusForbidden,
			code:    "forbidden",
			message: "only the trip creator can update this trip",
		},
		{
			name:    "conflict",
			err:     fmt.Errorf("%w: already a member of this trip", domain.ErrConflict),
			status:  http.StatusConflict,
			code:    "conflict",
			message: "already a member of this trip",
		},
		{
			name:    "validation",
			err:     fmt.Errorf("service.TripService.CreateTrip: %w", fmt.Errorf("%w: name is required", domain.ErrValidation)),
			status:  http.StatusUnprocessableEntity,
			code:    "validation_error",
			message: "name is required",
		},
		{
			name:    "code space exhausted is internal",
			err:     fmt.Errorf("service.TripService.CreateTrip: %w", domain.ErrCodeSpaceExhausted),
			status:  http.StatusInternalServerError,
			code:    "internal_error",
			message: "internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockTripServicer{
				get: func(context.Context, uuid.UUID, uuid.UUID) (domain.TripDetail, error) {
					return domain.TripDetail{}, tc.err
				},
			}
			h := newHTTPHandler(handler.NewServer(svc, nil, nil, nil, nil))

			rec := do(t, h, http.MethodGet, "/trips/"+uuid.NewString(), nil)

			assert.Equal(t, tc.status, rec.Code)
			resp := decode[handler.ErrorResponse](t, rec)
			assert.Equal(t, tc.code, resp.Error.Code)
			assert.Equal(t, tc.message, resp.Error.Message)
		})
	}
}

// TestInternalError_DoesNotLeakCause checks that a storage error is logged
// but never written to the client.
func TestInternalError_DoesNotLeakCause(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	svc := &mockTripServicer{
		get: func(context.Context, uuid.UUID, uuid.UUID) (domain.TripDetail, error) {
			return domain.TripDetail{}, errors.New("pq: relation \"trips\" does not exist")
		},
	}
	h := newHTTPHandler(handler.NewServer(svc, nil, nil, nil, log))

	rec := do(t, h, http.MethodGet, "/trips/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
	assert.Contains(t, logs.String(), "relation")
	assert.Contains(t, logs.String(), `"level":"ERROR"`)
}

func TestMissingPrincipal_401(t *testing.T) {
	svc := &mockTripServicer{}
	h := handler.NewServer(svc, nil, nil, nil, nil).Handler(anonymous)

	rec := do(t, h, http.MethodGet, "/trips", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "unauthorized", resp.Error.Code)
}

func TestInvalidPathID_400(t *testing.T) {
	h := newHTTPHandler(handler.NewServer(&mockTripServicer{}, &mockActivityServicer{}, nil, nil, nil))

	for _, path := range []string{"/trips/not-a-uuid", "/activities/42"} {
		rec := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		resp := decode[handler.ErrorResponse](t, rec)
		assert.Equal(t, "bad_request", resp.Error.Code, path)
	}
}

func TestOversizedBody_413(t *testing.T) {
	svc := &mockTripServicer{}
	inner := newHTTPHandler(handler.NewServer(svc, nil, nil, nil, nil))
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 16)
		inner.ServeHTTP(w, r)
	})

	rec := do(t, h, http.MethodPost, "/trips", map[string]any{"name": strings.Repeat("x", 64)})

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "payload_too_large", resp.Error.Code)
}
