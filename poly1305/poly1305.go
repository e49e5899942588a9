// Package poly1305 implements the Poly1305 one-time message authentication
// code as specified in RFC 8439. Poly1305 provides unforgeability for a
// single message per key: authenticating two different messages under the
// same key leaks enough information to forge authenticators for other
// messages under that key. Callers MUST NOT reuse a OneTimeKey.
//
// Low-level, "hazardous materials" primitive: there is no nonce management,
// no key derivation, and no protection against key reuse beyond the type's
// name and documentation. Prefer a higher-level AEAD construction unless you
// specifically need a bare one-time MAC.
package poly1305

import (
	"errors"

	"github.com/latchkey-security/hazmac/internal/csprng"
	"github.com/latchkey-security/hazmac/internal/poly1305field"
	"github.com/latchkey-security/hazmac/internal/secret"
)

// Sizes of the key, block, and tag, per RFC 8439.
const (
	KeySize   = poly1305field.KeySize
	BlockSize = poly1305field.BlockSize
	TagSize   = poly1305field.TagSize
)

var (
	// ErrInvalidLength is returned when a key or tag is constructed from a
	// slice of the wrong length.
	ErrInvalidLength = errors.New("poly1305: invalid length")
	// ErrRNG is returned when the OS CSPRNG could not be read.
	ErrRNG = errors.New("poly1305: could not generate random bytes")
	// ErrFinalized is returned by Update or Finalize on a State that has
	// already been finalized without an intervening Reset.
	ErrFinalized = errors.New("poly1305: state already finalized")
	// ErrInvalidTag is returned by Verify when the computed tag does not
	// match the expected tag.
	ErrInvalidTag = errors.New("poly1305: invalid tag")
)

// OneTimeKey is a 32-byte Poly1305 key (r || s per RFC 8439). It must never
// be used to authenticate more than one message.
type OneTimeKey struct {
	b [KeySize]byte
}

// OneTimeKeyFromSlice builds a OneTimeKey from exactly KeySize bytes.
func OneTimeKeyFromSlice(b []byte) (OneTimeKey, error) {
	var k OneTimeKey
	if len(b) != KeySize {
		return k, ErrInvalidLength
	}
	copy(k.b[:], b)
	return k, nil
}

// GenerateOneTimeKey draws a fresh key from the OS CSPRNG.
func GenerateOneTimeKey() (OneTimeKey, error) {
	var k OneTimeKey
	if err := csprng.Fill(k.b[:]); err != nil {
		return OneTimeKey{}, ErrRNG
	}
	return k, nil
}

// UnprotectedAsBytes exposes the raw key bytes. Intended for internal use
// and interop with other primitives; the name is a reminder that the
// backing bytes are not copied or protected once returned.
func (k *OneTimeKey) UnprotectedAsBytes() []byte {
	return k.b[:]
}

// Destroy overwrites the key with zeros. The key must not be used
// afterwards.
func (k *OneTimeKey) Destroy() {
	secret.Wipe(k.b[:])
}

// String implements fmt.Stringer without ever formatting the key bytes, so
// that accidental %v/%+v logging of a key cannot leak it.
func (k OneTimeKey) String() string {
	return "poly1305.OneTimeKey{***OMITTED***}"
}

// Tag is a 16-byte Poly1305 authentication tag.
type Tag struct {
	b [TagSize]byte
}

// TagFromSlice builds a Tag from exactly TagSize bytes.
func TagFromSlice(b []byte) (Tag, error) {
	var t Tag
	if len(b) != TagSize {
		return t, ErrInvalidLength
	}
	copy(t.b[:], b)
	return t, nil
}

// Bytes returns the tag's bytes.
func (t Tag) Bytes() []byte {
	return t.b[:]
}

// Equal reports whether t and other hold the same bytes, in constant time.
func (t Tag) Equal(other Tag) bool {
	return secret.Equal(t.b[:], other.b[:])
}

// String implements fmt.Stringer without formatting the tag bytes.
func (t Tag) String() string {
	return "poly1305.Tag{***OMITTED***}"
}

type status uint8

const (
	statusFresh status = iota
	statusAccumulating
	statusFinalized
)

// State is the incremental Poly1305 computation: Init, repeated Update,
// then a single Finalize. A State may be reused for a new message under the
// same key via Reset, but note that doing so does not relax the one-time-key
// requirement. Poly1305 keys are still one-time per message; Reset exists
// for parity with hmacsha512.State and for testing, not to license key
// reuse. Call Destroy once a State is no longer needed to zeroize its
// secret-bearing fields.
type State struct {
	a        [5]uint32
	r        [5]uint32
	s        [4]uint32
	buffer   [BlockSize]byte
	leftover int
	status   status
}

// Init begins a new Poly1305 computation under key.
func Init(key OneTimeKey) *State {
	st := &State{}
	st.r, st.s = poly1305field.Clamp(&key.b)
	return st
}

// Update folds more of the message into the state. It can be called any
// number of times; the MAC is computed over the concatenation of all bytes
// passed to Update, in call order.
func (st *State) Update(data []byte) error {
	if st.status == statusFinalized {
		return ErrFinalized
	}
	st.status = statusAccumulating

	if st.leftover > 0 {
		want := BlockSize - st.leftover
		if want > len(data) {
			want = len(data)
		}
		copy(st.buffer[st.leftover:], data[:want])
		data = data[want:]
		st.leftover += want

		if st.leftover < BlockSize {
			return nil
		}

		poly1305field.Absorb(&st.a, &st.r, &st.buffer, true)
		st.leftover = 0
	}

	for len(data) >= BlockSize {
		var block [BlockSize]byte
		copy(block[:], data[:BlockSize])
		poly1305field.Absorb(&st.a, &st.r, &block, true)
		data = data[BlockSize:]
	}

	st.leftover = copy(st.buffer[:], data)
	return nil
}

// Finalize completes the computation and returns the tag. The State cannot
// be used again (Update or Finalize) until Reset.
func (st *State) Finalize() (Tag, error) {
	if st.status == statusFinalized {
		return Tag{}, ErrFinalized
	}
	st.status = statusFinalized

	if st.leftover > 0 {
		var block [BlockSize]byte
		copy(block[:], st.buffer[:st.leftover])
		block[st.leftover] = 1
		for i := st.leftover + 1; i < BlockSize; i++ {
			block[i] = 0
		}
		poly1305field.Absorb(&st.a, &st.r, &block, false)
	}

	return Tag{b: poly1305field.FinalReduce(&st.a, &st.s)}, nil
}

// Reset returns the State to its just-initialized condition for the same
// key: the accumulator and leftover buffer are cleared, but the clamped r
// and pad s are preserved so the state is ready to authenticate a new
// message. Because Poly1305 keys are one-time, reusing a State this way to
// authenticate a second message under the same key carries exactly the same
// risk as reusing the key directly. Reset is provided for API parity with
// hmacsha512.State and does not make repeated use safe.
func (st *State) Reset() {
	st.a = [5]uint32{}
	st.buffer = [BlockSize]byte{}
	st.leftover = 0
	st.status = statusFresh
}

// Destroy zeroizes the accumulator, the clamped multiplier, the pad, and
// the leftover buffer, and marks the State finalized so any later Update or
// Finalize fails with ErrFinalized instead of silently operating on wiped
// arithmetic. Destroy must be called once a State is no longer needed;
// letting it fall out of scope without calling Destroy leaves key-derived
// material resident in memory until the garbage collector reclaims it.
func (st *State) Destroy() {
	secret.ClearWords(st.a[:])
	secret.ClearWords(st.r[:])
	secret.ClearWords(st.s[:])
	secret.Wipe(st.buffer[:])
	st.leftover = 0
	st.status = statusFinalized
}

// String implements fmt.Stringer without formatting any field that derives
// from secret material.
func (st *State) String() string {
	return "poly1305.State{***OMITTED***}"
}

// MAC is the one-shot convenience entrypoint: init, a single update,
// finalize.
func MAC(key OneTimeKey, data []byte) Tag {
	st := Init(key)
	_ = st.Update(data)
	tag, _ := st.Finalize()
	return tag
}

// Verify recomputes the Poly1305 tag for key and data and compares it to
// expected in constant time. On success it returns (true, nil); on any
// mismatch it returns (false, ErrInvalidTag). Callers must treat a non-nil
// error as "not verified" rather than relying on the boolean alone.
func Verify(expected Tag, key OneTimeKey, data []byte) (bool, error) {
	got := MAC(key, data)
	if got.Equal(expected) {
		return true, nil
	}
	return false, ErrInvalidTag
}
