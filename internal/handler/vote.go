package handler

import "net/http"

// ToggleVote handles POST /activities/{id}/vote. The first call endorses
// the activity, the next one retracts the endorsement.
func (s *Server) ToggleVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathID(w, r)
	if !ok {
		return
	}

	res, err := s.votes.Toggle(r.Context(), activityID, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VoteResult{Voted: res.Voted, Activity: activityToResponse(res.Activity)})
}

// GetVoteStatus handles GET /activities/{id}/vote.
func (s *Server) GetVoteStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathID(w, r)
	if !ok {
		return
	}

	voted, err := s.votes.Status(r.Context(), activityID, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VoteStatus{Voted: voted})
}
