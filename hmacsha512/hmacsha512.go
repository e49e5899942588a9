// Package hmacsha512 implements HMAC-SHA512 (RFC 2104, test vectors per RFC
// 4231) as a keyed message authentication code.
//
// Low-level, "hazardous materials" primitive: no key derivation, no nonce
// handling, no message framing. Callers are responsible for generating keys
// with Generate (or an equivalent CSPRNG) and for comparing tags only
// through Verify or HmacTag.Equal.
package hmacsha512

import (
	"crypto/sha512"
	"errors"
	"hash"

	"github.com/latchkey-security/hazmac/internal/csprng"
	"github.com/latchkey-security/hazmac/internal/secret"
)

// Sizes, per RFC 4231 and the SHA-512 block size.
const (
	// BlockSize is the size of a SHA-512 input block and the fixed size of
	// an HmacSecretKey once constructed.
	BlockSize = 128
	// TagSize is the size of an HMAC-SHA512 tag.
	TagSize = sha512.Size

	// RecommendedKeySize is the minimum key length this package's doc
	// comments recommend; FromSlice accepts any length from 1 to
	// BlockSize, but keys shorter than this trade away security margin.
	RecommendedKeySize = 64
)

var (
	// ErrInvalidLength is returned when a key or tag is constructed from a
	// slice of the wrong length.
	ErrInvalidLength = errors.New("hmacsha512: invalid length")
	// ErrRNG is returned when the OS CSPRNG could not be read.
	ErrRNG = errors.New("hmacsha512: could not generate random bytes")
	// ErrFinalized is returned by Update or Finalize on a State that has
	// already been finalized without an intervening Reset.
	ErrFinalized = errors.New("hmacsha512: state already finalized")
	// ErrInvalidTag is returned by Verify when the computed tag does not
	// match the expected tag.
	ErrInvalidTag = errors.New("hmacsha512: invalid tag")
)

// HmacSecretKey is an HMAC-SHA512 key, stored zero-padded to BlockSize
// bytes. The recommended minimum length is RecommendedKeySize; keys longer
// than BlockSize are rejected rather than hashed down, since this package
// targets exactly one hash function and one block size.
type HmacSecretKey struct {
	b [BlockSize]byte
}

// HmacSecretKeyFromSlice builds a key from 1 to BlockSize bytes, zero-padded
// on the right to BlockSize. A slice longer than BlockSize, or empty,
// returns ErrInvalidLength.
func HmacSecretKeyFromSlice(b []byte) (HmacSecretKey, error) {
	var k HmacSecretKey
	if len(b) == 0 || len(b) > BlockSize {
		return k, ErrInvalidLength
	}
	copy(k.b[:], b)
	return k, nil
}

// GenerateHmacSecretKey draws a fresh, full-length (BlockSize-byte) key from
// the OS CSPRNG.
func GenerateHmacSecretKey() (HmacSecretKey, error) {
	var k HmacSecretKey
	if err := csprng.Fill(k.b[:]); err != nil {
		return HmacSecretKey{}, ErrRNG
	}
	return k, nil
}

// UnprotectedAsBytes exposes the key's zero-padded BlockSize-byte backing
// array. The name is a reminder that the returned bytes are not copied or
// protected once returned.
func (k *HmacSecretKey) UnprotectedAsBytes() []byte {
	return k.b[:]
}

// Destroy overwrites the key with zeros. The key must not be used
// afterwards.
func (k *HmacSecretKey) Destroy() {
	secret.Wipe(k.b[:])
}

// String implements fmt.Stringer without ever formatting the key bytes.
func (k HmacSecretKey) String() string {
	return "hmacsha512.HmacSecretKey{***OMITTED***}"
}

// HmacTag is a 64-byte HMAC-SHA512 authentication tag.
type HmacTag struct {
	b [TagSize]byte
}

// HmacTagFromSlice builds a HmacTag from exactly TagSize bytes.
func HmacTagFromSlice(b []byte) (HmacTag, error) {
	var t HmacTag
	if len(b) != TagSize {
		return t, ErrInvalidLength
	}
	copy(t.b[:], b)
	return t, nil
}

// Bytes returns the tag's bytes.
func (t HmacTag) Bytes() []byte {
	return t.b[:]
}

// Equal reports whether t and other hold the same bytes, in constant time.
func (t HmacTag) Equal(other HmacTag) bool {
	return secret.Equal(t.b[:], other.b[:])
}

// String implements fmt.Stringer without formatting the tag bytes.
func (t HmacTag) String() string {
	return "hmacsha512.HmacTag{***OMITTED***}"
}

type status uint8

const (
	statusFresh status = iota
	statusAccumulating
	statusFinalized
)

// State is the incremental HMAC-SHA512 computation: Init, repeated Update,
// then a single Finalize.
//
// isave and osave hold the inner and outer SHA-512 hashers exactly as they
// stood right after absorbing ipad and opad, respectively, at Init time.
// They are never written to again directly: inner is a working clone
// taken from isave that Update mutates, and Finalize takes a fresh clone of
// osave as scratch space. This lets Reset restore a State to its
// just-initialized condition without retaining the raw key or re-deriving
// ipad/opad. Call Destroy once a State is no longer needed to scrub the
// key-derived chaining state out of all three hashers.
type State struct {
	isave  hash.Hash
	osave  hash.Hash
	inner  hash.Hash
	status status
}

// Init begins a new HMAC-SHA512 computation under key.
func Init(key HmacSecretKey) *State {
	var ipad, opad [BlockSize]byte
	for i := 0; i < BlockSize; i++ {
		ipad[i] = key.b[i] ^ 0x36
		opad[i] = key.b[i] ^ 0x5c
	}

	isave := sha512.New()
	isave.Write(ipad[:])
	osave := sha512.New()
	osave.Write(opad[:])

	return &State{
		isave: isave,
		osave: osave,
		inner: cloneHash(isave),
	}
}

// Update folds more of the message into the state. It can be called any
// number of times; the MAC is computed over the concatenation of all bytes
// passed to Update, in call order.
func (st *State) Update(data []byte) error {
	if st.status == statusFinalized {
		return ErrFinalized
	}
	st.status = statusAccumulating
	st.inner.Write(data)
	return nil
}

// Finalize completes the computation and returns the tag. The State cannot
// be used again (Update or Finalize) until Reset.
func (st *State) Finalize() (HmacTag, error) {
	if st.status == statusFinalized {
		return HmacTag{}, ErrFinalized
	}
	st.status = statusFinalized

	innerSum := st.inner.Sum(nil)
	outer := cloneHash(st.osave)
	outer.Write(innerSum)

	var tag HmacTag
	copy(tag.b[:], outer.Sum(nil))
	return tag, nil
}

// Reset returns the State to its just-initialized condition for the same
// key: the working inner hasher is replaced with a fresh clone of isave,
// discarding everything absorbed by Update.
func (st *State) Reset() {
	st.inner = cloneHash(st.isave)
	st.status = statusFresh
}

// Destroy scrubs the key-derived chaining state out of isave, osave, and
// inner and marks the State finalized so any later Update or Finalize fails
// with ErrFinalized. hash.Hash exposes no raw buffer to overwrite, so
// Destroy calls each hasher's Reset, which is crypto/sha512's own
// documented way of returning a digest to its initial, key-independent
// chaining value; the hashers are then dropped so the garbage collector can
// reclaim them. Destroy must be called once a State is no longer needed.
func (st *State) Destroy() {
	if st.isave != nil {
		st.isave.Reset()
	}
	if st.osave != nil {
		st.osave.Reset()
	}
	if st.inner != nil {
		st.inner.Reset()
	}
	st.isave = nil
	st.osave = nil
	st.inner = nil
	st.status = statusFinalized
}

// String implements fmt.Stringer without formatting any field that derives
// from secret material.
func (st *State) String() string {
	return "hmacsha512.State{***OMITTED***}"
}

// MAC is the one-shot convenience entrypoint: init, a single update,
// finalize.
func MAC(key HmacSecretKey, data []byte) HmacTag {
	st := Init(key)
	_ = st.Update(data)
	tag, _ := st.Finalize()
	return tag
}

// Verify recomputes the HMAC-SHA512 tag for key and data and compares it to
// expected in constant time. On success it returns (true, nil); on any
// mismatch it returns (false, ErrInvalidTag). Callers must treat a non-nil
// error as "not verified" rather than relying on the boolean alone.
func Verify(expected HmacTag, key HmacSecretKey, data []byte) (bool, error) {
	got := MAC(key, data)
	if got.Equal(expected) {
		return true, nil
	}
	return false, ErrInvalidTag
}
