// Package rollhash implements a fixed-window polynomial rolling hash of byte
// strings.  It allows to hash every window of a string of length n in O(n).
package rollhash

const (
	// radix is the base of the polynomial, one per possible byte value.
	radix = 256

	// modulus is a big prime number that keeps the hash within uint32.
	modulus = 179424673
)

// Hash calculates hashes of the strings of a constant length:
//
//	h(i) = s[i]*R^(M-1) + s[i+1]*R^(M-2) + ... + s[i+M-1]*R^0 (mod Q)
//
// A *Hash is immutable and is safe for concurrent use.
type Hash struct {
	// multipliers are the precomputed values of R^(M-1-i) mod Q.
	multipliers []uint64
}

// New returns a hash for windows of the given size.  size must be positive.
func New(size int) (h *Hash) {
	h = &Hash{
		multipliers: make([]uint64, size),
	}

	m := uint64(1)
	for i := size - 1; i >= 0; i-- {
		h.multipliers[i] = m
		m = (m * radix) % modulus
	}

	return h
}

// Size returns the window size of h.
func (h *Hash) Size() (n int) {
	return len(h.multipliers)
}

// Compute returns the hash of s[start:start+h.Size()].  ok is false if there
// are less than h.Size() bytes left in s after start.
func (h *Hash) Compute(s string, start int) (hash uint32, ok bool) {
	if start < 0 || len(s)-start < len(h.multipliers) {
		return 0, false
	}

	var v uint64
	for i, mul := range h.multipliers {
		v = (v + uint64(s[start+i])*mul%modulus) % modulus
	}

	return uint32(v), true
}

// Extend returns the hash of the window starting at start using prev, the
// hash of the window starting at start-1.  For start equal to zero, it's
// equivalent to Compute.
func (h *Hash) Extend(s string, start int, prev uint32) (hash uint32, ok bool) {
	if start == 0 {
		return h.Compute(s, 0)
	}

	size := len(h.multipliers)
	if start < 0 || len(s)-start < size {
		return 0, false
	}

	// Add the modulus before subtracting to stay within unsigned integers.
	out := uint64(s[start-1]) * h.multipliers[0] % modulus
	v := (uint64(prev) + modulus - out) % modulus
	v = (v*radix + uint64(s[start+size-1])) % modulus

	return uint32(v), true
}
