// Package httpapi implements the thin HTTP transport over the core
// single-flight resolver and replay guard: input validation, error-kind
// mapping, and JSON serialization.
package httpapi

import (
	"net/http"
	"time"

	"github.com/roterdam/beaver-ttp/internal/replay"
	"github.com/roterdam/beaver-ttp/internal/resolve"
	"github.com/roterdam/beaver-ttp/internal/store"
	"go.uber.org/zap"
)

// Service wires the replay guard and resolver behind the HTTP endpoints.
type Service struct {
	Guard    *replay.Guard
	Resolver *resolve.Resolver
	Store    store.Store
	TTL      time.Duration
	Log      *zap.Logger
}

// NewService constructs a Service with the given TTL applied uniformly to
// replay markers and published triple records, per the design requirement
// that the replay guard's TTL never be shorter than the triple's.
func NewService(s store.Store, log *zap.Logger, ttl time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Guard:    replay.NewGuard(s),
		Resolver: resolve.NewResolver(s, log),
		Store:    s,
		TTL:      ttl,
		Log:      log,
	}
}

// Routes returns an http.Handler with all endpoints registered.
func (s *Service) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/beaver/share", s.handleShare)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/stats", s.handleStats)
	return mux
}
