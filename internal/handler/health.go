package handler

import "net/http"

// GetHealth handles GET /healthz.
// It reports only that the process is serving; it does not touch the database.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
