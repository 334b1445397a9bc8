package httpapi

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis"`
	Error  string `json:"error,omitempty"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "unhealthy",
			Redis:  "disconnected",
			Error:  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Redis: "connected"})
}
