// Package ring implements the two algebraic rings over which Beaver triples
// are generated: the bit ring Z/2Z and the machine-word ring Z/2^64Z.
package ring

import "errors"

// Ring identifies the modulus used for triple generation and reduction.
type Ring string

const (
	// Binary is Z/2Z, used for boolean (AND) Beaver triples.
	Binary Ring = "Z2"
	// Word64 is Z/2^64Z, used for arithmetic triples over 64-bit words.
	Word64 Ring = "Z2^64"
)

// ErrUnknown is returned by Parse for any string that isn't a recognized ring.
var ErrUnknown = errors.New("ring: unknown ring")

// Parse validates a wire-format ring name.
func Parse(s string) (Ring, error) {
	switch Ring(s) {
	case Binary, Word64:
		return Ring(s), nil
	default:
		return "", ErrUnknown
	}
}

// Modulus returns the ring's modulus as reported to callers. Word64's true
// modulus, 2^64, doesn't fit in a uint64, so 0 is used as its sentinel: every
// arithmetic operation below treats Word64 as relying on uint64's native
// wraparound rather than computing against this value directly.
func (r Ring) Modulus() uint64 {
	if r == Binary {
		return 2
	}
	return 0
}

// Reduce maps x into [0, m) for the ring. Word64 needs no reduction because
// uint64 arithmetic already wraps mod 2^64.
func (r Ring) Reduce(x uint64) uint64 {
	if r == Binary {
		return x & 1
	}
	return x
}

// Add returns x+y reduced modulo the ring's modulus.
func (r Ring) Add(x, y uint64) uint64 {
	return r.Reduce(x + y)
}

// Sub returns x-y reduced modulo the ring's modulus, in [0, m) rather than
// the two's-complement wraparound of a signed subtraction.
func (r Ring) Sub(x, y uint64) uint64 {
	if r == Binary {
		return (x ^ y) & 1
	}
	return x - y // uint64 wraparound is exactly mod 2^64 subtraction
}

// Mul returns x*y reduced modulo the ring's modulus.
func (r Ring) Mul(x, y uint64) uint64 {
	if r == Binary {
		return (x & y) & 1
	}
	return x * y // uint64 wraparound is exactly mod 2^64 multiplication
}

// Valid reports whether r is one of the enumerated rings.
func (r Ring) Valid() bool {
	return r == Binary || r == Word64
}
