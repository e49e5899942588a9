// Package secret provides zeroing helpers and constant-time equality for key
// and tag material shared by the hmacsha512 and poly1305 packages.
package secret

import (
	"runtime"

	"github.com/ericlagergren/subtle"
)

// Equal reports whether a and b hold the same bytes, in time independent of
// where (or whether) they first differ.
func Equal(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}

// Wipe overwrites b with zeros. The write is anchored with runtime.KeepAlive
// so the compiler cannot prove the store dead and elide it, even though b is
// about to go out of scope.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// ClearWords overwrites words with zeros, the same way Wipe does for bytes.
// It exists because the Poly1305 accumulator, multiplier, and pad are held
// as limbs ([]uint32), not a raw byte buffer.
func ClearWords(words []uint32) {
	for i := range words {
		words[i] = 0
	}
	runtime.KeepAlive(words)
}
