package hmacsha512

import (
	"crypto/sha512"
	"encoding"
	"hash"
)

// cloneHash returns an independent copy of h's internal digest state as a
// fresh hash.Hash. Writing to the clone never affects h.
//
// crypto/sha512's digest type implements encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler for exactly this purpose: it's the mechanism
// the standard library's own crypto/hmac uses internally to save and
// restore hasher state. hash.Hash itself has no Clone method, so this is
// the only documented way to copy a stdlib hasher's state without mutating
// the original.
func cloneHash(h hash.Hash) hash.Hash {
	marshaler, ok := h.(encoding.BinaryMarshaler)
	if !ok {
		panic("hmacsha512: sha512 digest does not implement encoding.BinaryMarshaler")
	}
	state, err := marshaler.MarshalBinary()
	if err != nil {
		panic(err)
	}

	clone := sha512.New()
	unmarshaler, ok := clone.(encoding.BinaryUnmarshaler)
	if !ok {
		panic("hmacsha512: sha512 digest does not implement encoding.BinaryUnmarshaler")
	}
	if err := unmarshaler.UnmarshalBinary(state); err != nil {
		panic(err)
	}
	return clone
}
