// Package replay implements the per-party anti-replay guard: a one-shot
// marker recording that a party has been served (or is being served) for a
// given (session, triple_id), so a second request is rejected rather than
// silently re-served.
package replay

import (
	"context"
	"time"

	"github.com/roterdam/beaver-ttp/internal/store"
)

// Verdict is the outcome of a replay claim attempt.
type Verdict int

const (
	// Granted means this is the party's first request; the marker is now set.
	Granted Verdict = iota
	// DoubleRequest means a marker already existed: this is a second request.
	DoubleRequest
)

// Guard enforces at-most-once share delivery per (session, triple_id, party).
type Guard struct {
	Store store.Store
}

// NewGuard constructs a Guard backed by the given coordination store.
func NewGuard(s store.Store) *Guard {
	return &Guard{Store: s}
}

// Claim attempts to mark (session, tripleID, party) as served. ttl must equal
// the triple's own TTL: a shorter replay-marker TTL would let a party
// legally re-request after the marker expired but before the cached triple
// did, silently violating at-most-once delivery.
func (g *Guard) Claim(ctx context.Context, session string, tripleID int64, party int, ttl time.Duration) (Verdict, error) {
	key := store.RequestKey(session, tripleID, party)
	ok, err := g.Store.PutIfAbsent(ctx, key, []byte("1"), ttl)
	if err != nil {
		return 0, err
	}
	if ok {
		return Granted, nil
	}
	return DoubleRequest, nil
}
