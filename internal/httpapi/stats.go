package httpapi

import (
	"net/http"

	"github.com/roterdam/beaver-ttp/internal/store"
)

type statsResponse struct {
	ActiveTriples  int    `json:"active_triples"`
	ActiveRequests int    `json:"active_requests"`
	TTLSeconds     int    `json:"ttl_seconds"`
	Note           string `json:"note"`
	Error          string `json:"error,omitempty"`
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	triples, err := s.Store.CountPrefix(r.Context(), store.TriplePrefix)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statsResponse{Error: err.Error()})
		return
	}
	requests, err := s.Store.CountPrefix(r.Context(), store.RequestPrefix)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statsResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		ActiveTriples:  triples,
		ActiveRequests: requests,
		TTLSeconds:     int(s.TTL.Seconds()),
		Note:           "All data auto-expires after TTL",
	})
}
