// Package triple generates Beaver multiplication triples and splits them
// into additive shares, using a cryptographically strong random source.
package triple

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/roterdam/beaver-ttp/internal/ring"
)

// Share is one party's additive share (a_i, b_i, c_i) of a triple.
type Share struct {
	A, B, C uint64
}

// Pair is the two shares generated for a single triple, together with the
// ring they were generated in.
type Pair struct {
	Ring   ring.Ring
	Share0 Share
	Share1 Share
}

// randUint64 draws a uniform uint64 from rng. rng must be cryptographically
// strong; math/rand is never an acceptable substitute here.
func randUint64(rng io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// Generate samples a fresh Beaver triple in the given ring and returns the
// two additive shares, per the algorithm in the TTP's generation protocol:
// sample (a,b) uniformly, compute c = a*b, then split each of a, b, c into
// two shares that sum (mod the ring's modulus) back to the original value.
func Generate(r ring.Ring, rng io.Reader) (Pair, error) {
	if !r.Valid() {
		return Pair{}, ring.ErrUnknown
	}

	a, err := randUint64(rng)
	if err != nil {
		return Pair{}, err
	}
	b, err := randUint64(rng)
	if err != nil {
		return Pair{}, err
	}
	a = r.Reduce(a)
	b = r.Reduce(b)
	c := r.Mul(a, b)

	a0, err := randUint64(rng)
	if err != nil {
		return Pair{}, err
	}
	b0, err := randUint64(rng)
	if err != nil {
		return Pair{}, err
	}
	c0, err := randUint64(rng)
	if err != nil {
		return Pair{}, err
	}
	a0 = r.Reduce(a0)
	b0 = r.Reduce(b0)
	c0 = r.Reduce(c0)

	share0 := Share{A: a0, B: b0, C: c0}
	share1 := Share{
		A: r.Sub(a, a0),
		B: r.Sub(b, b0),
		C: r.Sub(c, c0),
	}

	return Pair{Ring: r, Share0: share0, Share1: share1}, nil
}

// GenerateSecure is Generate using the platform's cryptographic RNG. Every
// production code path must go through this, never a caller-supplied source.
func GenerateSecure(r ring.Ring) (Pair, error) {
	return Generate(r, rand.Reader)
}

// Reconstruct combines the two shares of a component to recover its original
// value, used by tests and by clients validating the secret-sharing invariant.
func Reconstruct(r ring.Ring, x0, x1 uint64) uint64 {
	return r.Add(x0, x1)
}
