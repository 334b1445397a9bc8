// Package store abstracts the coordination-store primitives (atomic
// set-if-absent, get, set, delete) the single-flight resolver and replay
// guard build on, and provides a concrete Redis-backed implementation.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the minimal coordination-store contract required by the
// resolver and replay guard. The core protocol needs only atomic
// set-if-absent-with-expiry, get, set-with-expiry, and delete; Ping and
// CountPrefix serve the health and stats endpoints.
type Store interface {
	// PutIfAbsent atomically sets key to value with the given ttl only if
	// key is currently absent. It reports whether the set happened.
	PutIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Set unconditionally sets key to value with the given ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns the current value of key, or ok=false if absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Delete removes key, if present.
	Delete(ctx context.Context, key string) error
	// Ping verifies connectivity to the backing store.
	Ping(ctx context.Context) error
	// CountPrefix counts keys matching the glob prefix+"*" without blocking
	// the store, used by the stats endpoint.
	CountPrefix(ctx context.Context, prefix string) (int, error)
}

// RedisStore implements Store over a github.com/redis/go-redis/v9 client.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore dials a Redis instance at host:port.
func NewRedisStore(host string, port int) *RedisStore {
	return &RedisStore{rdb: redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", host, port),
	})}
}

// NewRedisStoreFromClient wraps an already-constructed client, used by tests
// that point at a miniredis instance.
func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) PutIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// CountPrefix uses SCAN rather than KEYS so that a large deployment's stats
// endpoint never blocks the event loop of the shared Redis instance.
func (s *RedisStore) CountPrefix(ctx context.Context, prefix string) (int, error) {
	var count int
	var cursor uint64
	match := prefix + "*"
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, match, 200).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return count, nil
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
