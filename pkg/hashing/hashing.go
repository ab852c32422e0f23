// Package hashing wraps the single commodity hash primitive the cell
// format builds on (SHA-256): a thin adapter, not a reimplementation.
package hashing

import "crypto/sha256"

// Hash computes SHA-256 over the concatenation of all given byte slices.
func Hash(data ...[]byte) [32]byte {
	d := sha256.New()
	for _, b := range data {
		d.Write(b)
	}
	var out [32]byte
	copy(out[:], d.Sum(nil))
	return out
}
