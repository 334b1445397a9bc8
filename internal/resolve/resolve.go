// Package resolve implements the keyed single-flight protocol that
// guarantees at most one triple generation runs per (session, triple_id)
// across all service instances sharing a coordination store, electing one
// requester as leader and making the rest wait for its published result.
package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/roterdam/beaver-ttp/internal/beavererr"
	"github.com/roterdam/beaver-ttp/internal/ring"
	"github.com/roterdam/beaver-ttp/internal/store"
	"github.com/roterdam/beaver-ttp/internal/triple"
	"go.uber.org/zap"
)

// Reference parameters from the design: the leader's lock TTL, the
// follower's poll interval, and the maximum number of polls, chosen so that
// MaxPolls*PollEvery (20 * 500ms = 10s) is no shorter than LockTTL (10s).
const (
	DefaultLockTTL   = 10 * time.Second
	DefaultPollEvery = 500 * time.Millisecond
	DefaultMaxPolls  = 20
)

// Resolver implements the leader/follower protocol over a coordination
// store. The zero value is not usable; construct with NewResolver.
type Resolver struct {
	Store     store.Store
	Log       *zap.Logger
	LockTTL   time.Duration
	PollEvery time.Duration
	MaxPolls  int
}

// NewResolver builds a Resolver with the reference-design defaults. log may
// be nil, in which case a no-op logger is used.
func NewResolver(s store.Store, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		Store:     s,
		Log:       log,
		LockTTL:   DefaultLockTTL,
		PollEvery: DefaultPollEvery,
		MaxPolls:  DefaultMaxPolls,
	}
}

// Resolve returns the published TripleRecord for (session, tripleID),
// generating it if this call is elected leader, or waiting for the leader
// to publish it otherwise. rg is the ring the caller expects; a cached
// record generated in a different ring yields ErrRingMismatch.
func (r *Resolver) Resolve(ctx context.Context, session string, tripleID int64, rg ring.Ring, ttl time.Duration) (triple.Pair, error) {
	key := store.TripleKey(session, tripleID)

	// Fast read: someone may have already published.
	if pair, found, err := r.fastRead(ctx, key, rg); err != nil {
		return triple.Pair{}, err
	} else if found {
		return pair, nil
	}

	// The sentinel's TTL must never exceed the published record's own TTL,
	// per the "T_lock short, T_lock <= T" invariant: a caller-configured ttl
	// shorter than the resolver's default lock TTL still has to win out.
	lockTTL := r.LockTTL
	if ttl < lockTTL {
		lockTTL = ttl
	}

	won, err := r.Store.PutIfAbsent(ctx, key, []byte(store.Sentinel), lockTTL)
	if err != nil {
		return triple.Pair{}, fmt.Errorf("%w: %s", beavererr.ErrStoreUnavailable, err)
	}

	if won {
		return r.lead(ctx, key, rg, ttl)
	}
	return r.follow(ctx, key, rg)
}

func (r *Resolver) lead(ctx context.Context, key string, rg ring.Ring, ttl time.Duration) (triple.Pair, error) {
	r.Log.Info("elected leader for triple generation", zap.String("key", key), zap.String("ring", string(rg)))

	pair, err := triple.GenerateSecure(rg)
	if err != nil {
		return triple.Pair{}, fmt.Errorf("beaver: internal generation failure: %w", err)
	}

	raw, err := store.EncodeRecord(pair)
	if err != nil {
		return triple.Pair{}, fmt.Errorf("beaver: internal encoding failure: %w", err)
	}

	if err := r.Store.Set(ctx, key, raw, ttl); err != nil {
		return triple.Pair{}, fmt.Errorf("%w: %s", beavererr.ErrStoreUnavailable, err)
	}

	r.Log.Info("published triple record", zap.String("key", key))
	return pair, nil
}

func (r *Resolver) follow(ctx context.Context, key string, rg ring.Ring) (triple.Pair, error) {
	r.Log.Info("following existing generation", zap.String("key", key))

	for attempt := 0; attempt < r.MaxPolls; attempt++ {
		pair, found, err := r.fastRead(ctx, key, rg)
		if err != nil {
			return triple.Pair{}, err
		}
		if found {
			return pair, nil
		}

		select {
		case <-ctx.Done():
			return triple.Pair{}, fmt.Errorf("%w: %s", beavererr.ErrGenerationTimeout, ctx.Err())
		case <-time.After(r.PollEvery):
		}
	}

	r.Log.Warn("follower wait exhausted", zap.String("key", key))
	return triple.Pair{}, beavererr.ErrGenerationTimeout
}

// fastRead reads the triple slot and, if a published record is present,
// decodes and ring-checks it. A sentinel or absent key yields found=false.
func (r *Resolver) fastRead(ctx context.Context, key string, rg ring.Ring) (triple.Pair, bool, error) {
	raw, ok, err := r.Store.Get(ctx, key)
	if err != nil {
		return triple.Pair{}, false, fmt.Errorf("%w: %s", beavererr.ErrStoreUnavailable, err)
	}
	if !ok {
		return triple.Pair{}, false, nil
	}

	pair, published, err := store.DecodeRecord(raw)
	if err != nil {
		return triple.Pair{}, false, fmt.Errorf("beaver: internal decoding failure: %w", err)
	}
	if !published {
		return triple.Pair{}, false, nil
	}
	if pair.Ring != rg {
		return triple.Pair{}, false, beavererr.ErrRingMismatch
	}
	return pair, true, nil
}
