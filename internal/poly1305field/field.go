// Package poly1305field implements the limbed GF(2^130-5) arithmetic at the
// heart of Poly1305 (RFC 8439): clamping the key into a multiplier r, the
// block-absorb step a <- (a+m)*r mod (2^130-5), and the constant-time final
// reduction that turns the accumulator into a 16-byte tag.
//
// The accumulator and multiplier are represented as five 26-bit limbs (radix
// 2^26), which gives enough headroom in a uint64 product to defer carry
// propagation across a whole block. This layout and the overlapping 32-bit
// window parse below are load-bearing: the byte boundaries of the wire
// format do not line up with the 26-bit limb boundaries, so the windows
// must overlap exactly as shown or the limbs end up representing the wrong
// polynomial.
package poly1305field

import "encoding/binary"

const (
	// KeySize is the length in bytes of a Poly1305 one-time key (r || s).
	KeySize = 32
	// BlockSize is the length in bytes of one Poly1305 message block.
	BlockSize = 16
	// TagSize is the length in bytes of a Poly1305 tag.
	TagSize = 16
)

const maskLimb = 0x3ffffff

// Clamp parses a 32-byte Poly1305 key into the clamped multiplier r and the
// pad s, per RFC 8439 section 2.5.
func Clamp(key *[KeySize]byte) (r [5]uint32, s [4]uint32) {
	r[0] = binary.LittleEndian.Uint32(key[0:4]) & 0x3ffffff
	r[1] = (binary.LittleEndian.Uint32(key[3:7]) >> 2) & 0x3ffff03
	r[2] = (binary.LittleEndian.Uint32(key[6:10]) >> 4) & 0x3ffc0ff
	r[3] = (binary.LittleEndian.Uint32(key[9:13]) >> 6) & 0x3f03fff
	r[4] = (binary.LittleEndian.Uint32(key[12:16]) >> 8) & 0x00fffff

	s[0] = binary.LittleEndian.Uint32(key[16:20])
	s[1] = binary.LittleEndian.Uint32(key[20:24])
	s[2] = binary.LittleEndian.Uint32(key[24:28])
	s[3] = binary.LittleEndian.Uint32(key[28:32])
	return r, s
}

// Absorb folds one 16-byte block into the accumulator a, computing
// a <- (a+m)*r with the 2^130 ≡ 5 identity folded into the product.
//
// fullBlock must be true for every interior/whole block absorbed during
// streaming, and false only for the single, possibly zero-padded, final
// block passed in from finalize. In that case the high bit that would
// otherwise mark a full block must already be encoded as the explicit 0x01
// byte appended by the caller, per RFC 8439's "add one bit beyond the
// number of octets" padding rule.
func Absorb(a, r *[5]uint32, block *[BlockSize]byte, fullBlock bool) {
	var hibit uint32
	if fullBlock {
		hibit = 1 << 24
	}

	r0, r1, r2, r3, r4 := uint64(r[0]), uint64(r[1]), uint64(r[2]), uint64(r[3]), uint64(r[4])
	s1, s2, s3, s4 := r1*5, r2*5, r3*5, r4*5

	h0, h1, h2, h3, h4 := a[0], a[1], a[2], a[3], a[4]

	// h += m
	h0 += binary.LittleEndian.Uint32(block[0:4]) & maskLimb
	h1 += (binary.LittleEndian.Uint32(block[3:7]) >> 2) & maskLimb
	h2 += (binary.LittleEndian.Uint32(block[6:10]) >> 4) & maskLimb
	h3 += (binary.LittleEndian.Uint32(block[9:13]) >> 6) & maskLimb
	h4 += (binary.LittleEndian.Uint32(block[12:16]) >> 8) | hibit

	// h *= r, folding 2^130 ≡ 5 (mod 2^130-5) into the wraparound terms.
	d0 := uint64(h0)*r0 + uint64(h1)*s4 + uint64(h2)*s3 + uint64(h3)*s2 + uint64(h4)*s1
	d1 := uint64(h0)*r1 + uint64(h1)*r0 + uint64(h2)*s4 + uint64(h3)*s3 + uint64(h4)*s2
	d2 := uint64(h0)*r2 + uint64(h1)*r1 + uint64(h2)*r0 + uint64(h3)*s4 + uint64(h4)*s3
	d3 := uint64(h0)*r3 + uint64(h1)*r2 + uint64(h2)*r1 + uint64(h3)*r0 + uint64(h4)*s4
	d4 := uint64(h0)*r4 + uint64(h1)*r3 + uint64(h2)*r2 + uint64(h3)*r1 + uint64(h4)*r0

	// Partial carry: 26-bit carries d0->d1->d2->d3->d4, then fold the d4
	// carry back into h0 (times 5) and let its own carry spill into h1.
	var c uint32
	c = uint32(d0 >> 26)
	h0 = uint32(d0) & maskLimb
	d1 += uint64(c)
	c = uint32(d1 >> 26)
	h1 = uint32(d1) & maskLimb
	d2 += uint64(c)
	c = uint32(d2 >> 26)
	h2 = uint32(d2) & maskLimb
	d3 += uint64(c)
	c = uint32(d3 >> 26)
	h3 = uint32(d3) & maskLimb
	d4 += uint64(c)
	c = uint32(d4 >> 26)
	h4 = uint32(d4) & maskLimb
	h0 += c * 5
	c = h0 >> 26
	h0 &= maskLimb
	h1 += c

	a[0], a[1], a[2], a[3], a[4] = h0, h1, h2, h3, h4
}

// FinalReduce performs the one-time final carry propagation, the
// constant-time conditional subtraction of p = 2^130-5, the addition of the
// pad s mod 2^128, and serializes the result as a little-endian tag. It must
// be called exactly once, after all blocks have been absorbed.
func FinalReduce(a *[5]uint32, s *[4]uint32) [TagSize]byte {
	h0, h1, h2, h3, h4 := a[0], a[1], a[2], a[3], a[4]

	// Full carry chain: h1->h2->h3->h4->(h0*5)->h1.
	var c uint32
	c = h1 >> 26
	h1 &= maskLimb
	h2 += c
	c = h2 >> 26
	h2 &= maskLimb
	h3 += c
	c = h3 >> 26
	h3 &= maskLimb
	h4 += c
	c = h4 >> 26
	h4 &= maskLimb
	h0 += c * 5
	c = h0 >> 26
	h0 &= maskLimb
	h1 += c

	// g = h + 5, with g4 losing the top bit so its sign tells us whether
	// h >= p = 2^130-5, i.e. whether g "wrapped".
	g0 := h0 + 5
	c = g0 >> 26
	g0 &= maskLimb
	g1 := h1 + c
	c = g1 >> 26
	g1 &= maskLimb
	g2 := h2 + c
	c = g2 >> 26
	g2 &= maskLimb
	g3 := h3 + c
	c = g3 >> 26
	g3 &= maskLimb
	g4 := h4 + c - (1 << 26)

	// mask is all-ones when h >= p (use g), all-zeros when h < p (use h).
	// No data-dependent branch: the select is a pure bitwise blend.
	mask := (g4 >> 31) - 1
	notMask := ^mask
	h0 = (h0 & notMask) | (g0 & mask)
	h1 = (h1 & notMask) | (g1 & mask)
	h2 = (h2 & notMask) | (g2 & mask)
	h3 = (h3 & notMask) | (g3 & mask)
	h4 = (h4 & notMask) | (g4 & mask)

	// Repack the five 26-bit limbs into four 32-bit words.
	h0 = h0 | (h1 << 26)
	h1 = (h1 >> 6) | (h2 << 20)
	h2 = (h2 >> 12) | (h3 << 14)
	h3 = (h3 >> 18) | (h4 << 8)

	// tag = (h + s) mod 2^128, carried through four 64-bit adds.
	f := uint64(h0) + uint64(s[0])
	h0 = uint32(f)
	f = uint64(h1) + uint64(s[1]) + (f >> 32)
	h1 = uint32(f)
	f = uint64(h2) + uint64(s[2]) + (f >> 32)
	h2 = uint32(f)
	f = uint64(h3) + uint64(s[3]) + (f >> 32)
	h3 = uint32(f)

	var tag [TagSize]byte
	binary.LittleEndian.PutUint32(tag[0:4], h0)
	binary.LittleEndian.PutUint32(tag[4:8], h1)
	binary.LittleEndian.PutUint32(tag[8:12], h2)
	binary.LittleEndian.PutUint32(tag[12:16], h3)
	return tag
}
