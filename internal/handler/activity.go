package handler

import (
	"net/http"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// ListActivities handles GET /trips/{id}/activities.
func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}

	acts, err := s.activities.ListByTrip(r.Context(), tripID, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activitiesToResponse(acts))
}

// CreateActivity handles POST /trips/{id}/activities.
func (s *Server) CreateActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	var body ActivityRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	a := requestToActivity(body)
	a.TripID = tripID
	created, err := s.activities.Create(r.Context(), a, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, activityToResponse(created))
}

// GetActivity handles GET /activities/{id}.
func (s *Server) GetActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathID(w, r)
	if !ok {
		return
	}

	a, err := s.activities.Get(r.Context(), activityID, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activityToResponse(a))
}

// UpdateActivity handles PUT /activities/{id}. Any member of the owning
// trip may update; the trip and proposer never change.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathID(w, r)
	if !ok {
		return
	}
	var body ActivityRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	a := requestToActivity(body)
	a.ID = activityID
	updated, err := s.activities.Update(r.Context(), a, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activityToResponse(updated))
}

// DeleteActivity handles DELETE /activities/{id}. Its votes go with it.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.activities.Delete(r.Context(), activityID, userID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requestToActivity converts an ActivityRequest body into a domain.Activity.
// An absent category is left empty and defaulted by the service.
func requestToActivity(body ActivityRequest) domain.Activity {
	return domain.Activity{
		Name:          body.Name,
		Description:   stringOrEmpty(body.Description),
		Date:          dateOrZero(body.Date),
		Time:          body.Time,
		Category:      domain.Category(stringOrEmpty(body.Category)),
		EstimatedCost: body.EstimatedCost,
		Notes:         stringOrEmpty(body.Notes),
	}
}
