package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/roterdam/beaver-ttp/internal/beavererr"
	"github.com/roterdam/beaver-ttp/internal/replay"
	"github.com/roterdam/beaver-ttp/internal/ring"
	"go.uber.org/zap"
)

// decimal renders a ring element as a decimal string, since Word64 values
// may exceed the safe-integer range of any numeric JSON type.
func decimal(x uint64) string {
	return strconv.FormatUint(x, 10)
}

type shareRequest struct {
	SessionID string      `json:"session_id"`
	PartyID   json.Number `json:"party_id"`
	TripleID  json.Number `json:"triple_id"`
	Ring      string      `json:"ring"`
}

type shareResponse struct {
	SessionID string    `json:"session_id"`
	TripleID  int64     `json:"triple_id"`
	PartyID   int       `json:"party_id"`
	Share     shareWire `json:"share"`
}

type shareWire struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// deadlineMargin is added to the follower-wait budget (W*S) when deriving
// the request-scoped context deadline, so the resolver's own timeout error
// always fires before the context cancels the in-flight store call.
const deadlineMargin = 2 * time.Second

func (s *Service) handleShare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "INVALID_VALUE", "method not allowed")
		return
	}

	var req shareRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "malformed JSON body")
		return
	}

	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "session_id is required")
		return
	}
	if req.PartyID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "party_id is required")
		return
	}
	if req.TripleID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "triple_id is required")
		return
	}

	partyID, err := req.PartyID.Int64()
	if err != nil || (partyID != 0 && partyID != 1) {
		writeError(w, http.StatusBadRequest, "INVALID_VALUE", "party_id must be 0 or 1")
		return
	}

	tripleID, err := req.TripleID.Int64()
	if err != nil || tripleID < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_VALUE", "triple_id must be a non-negative integer")
		return
	}

	rg, err := ring.Parse(req.Ring)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_VALUE", "ring must be 'Z2^64' or 'Z2'")
		return
	}

	verdict, err := s.Guard.Claim(r.Context(), req.SessionID, tripleID, int(partyID), s.TTL)
	if err != nil {
		s.Log.Error("replay claim failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if verdict == replay.DoubleRequest {
		writeError(w, http.StatusForbidden, "DOUBLE_REQUEST",
			"party has already been served for this triple")
		return
	}

	budget := time.Duration(s.Resolver.MaxPolls)*s.Resolver.PollEvery + deadlineMargin
	ctx, cancel := context.WithTimeout(r.Context(), budget)
	defer cancel()

	pair, err := s.Resolver.Resolve(ctx, req.SessionID, tripleID, rg, s.TTL)
	if err != nil {
		writeResolveError(w, s.Log, err)
		return
	}

	var share shareWire
	if partyID == 0 {
		share = shareWire{decimal(pair.Share0.A), decimal(pair.Share0.B), decimal(pair.Share0.C)}
	} else {
		share = shareWire{decimal(pair.Share1.A), decimal(pair.Share1.B), decimal(pair.Share1.C)}
	}

	writeJSON(w, http.StatusOK, shareResponse{
		SessionID: req.SessionID,
		TripleID:  tripleID,
		PartyID:   int(partyID),
		Share:     share,
	})
}

func writeResolveError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, beavererr.ErrRingMismatch):
		writeError(w, http.StatusBadRequest, "INVALID_VALUE", "triple already generated in a different ring")
	case errors.Is(err, beavererr.ErrGenerationTimeout):
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "triple generation timed out")
	case errors.Is(err, beavererr.ErrStoreUnavailable):
		log.Error("store unavailable during resolve", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "coordination store unavailable")
	default:
		log.Error("unexpected resolve failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
