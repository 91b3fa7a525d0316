package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// CreateTrip handles POST /trips. The caller becomes the trip's creator.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var body TripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.trips.CreateTrip(r.Context(), requestToTrip(body), userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripDetailToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	params := domain.NewPaginationParams(page, limit)
	trips, total, err := s.trips.ListTrips(r.Context(), userID, params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data := make([]TripDetail, len(trips))
	for i, t := range trips {
		data[i] = tripDetailToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// PreviewTrip handles GET /trips/code/{code}. Any authenticated user may
// look a trip up by code before joining it.
func (s *Server) PreviewTrip(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	code, ok := pathCode(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.PreviewTrip(r.Context(), code)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// JoinTrip handles POST /trips/join/{code}.
func (s *Server) JoinTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	code, ok := pathCode(w, r)
	if !ok {
		return
	}

	joined, err := s.trips.JoinTrip(r.Context(), code, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripDetailToResponse(joined))
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.GetTrip(r.Context(), tripID, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripDetailToResponse(trip))
}

// UpdateTrip handles PUT /trips/{id}. Only the creator may update.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	var body TripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	trip := requestToTrip(body)
	trip.ID = tripID
	updated, err := s.trips.UpdateTrip(r.Context(), trip, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripDetailToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{id}. Only the creator may delete.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.trips.DeleteTrip(r.Context(), tripID, userID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LeaveTrip handles POST /trips/{id}/leave.
func (s *Server) LeaveTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.trips.LeaveTrip(r.Context(), tripID, userID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// pathCode reads the {code} URL parameter. Case and surrounding space are
// normalised by the service.
func pathCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		badRequest(w, "trip code is required")
		return "", false
	}
	return code, true
}

// requestToTrip converts a TripRequest body into a domain.Trip.
// Missing required fields are left zero for the service to reject.
func requestToTrip(body TripRequest) domain.Trip {
	return domain.Trip{
		Name:        body.Name,
		Description: stringOrEmpty(body.Description),
		StartDate:   dateOrZero(body.StartDate),
		EndDate:     dateOrZero(body.EndDate),
		Budget:      body.Budget,
	}
}
