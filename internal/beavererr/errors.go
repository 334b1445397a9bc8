// Package beavererr defines the sentinel error kinds shared between the
// resolver and the HTTP layer, so that errors.Is/As at the
// boundary can classify a failure without string matching.
package beavererr

import "github.com/pkg/errors"

var (
	// ErrDoubleRequest is returned when a party has already been served (or
	// is currently being served) for a given (session, triple_id).
	ErrDoubleRequest = errors.New("beaver: double request")

	// ErrGenerationTimeout is returned when a follower's wait for the leader
	// to publish a triple record exceeds the configured budget.
	ErrGenerationTimeout = errors.New("beaver: generation timeout")

	// ErrStoreUnavailable wraps any failure of the coordination store.
	ErrStoreUnavailable = errors.New("beaver: store unavailable")

	// ErrRingMismatch is returned when a cached triple record exists in a
	// different ring than the one requested.
	ErrRingMismatch = errors.New("beaver: ring mismatch")

	// ErrInvalidValue covers malformed or out-of-range request fields.
	ErrInvalidValue = errors.New("beaver: invalid value")

	// ErrMissingField covers absent required request fields.
	ErrMissingField = errors.New("beaver: missing field")
)
