package hmacsha512_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/latchkey-security/hazmac/hmacsha512"
)

func mustKey(t *testing.T, raw []byte) hmacsha512.HmacSecretKey {
	t.Helper()
	k, err := hmacsha512.HmacSecretKeyFromSlice(raw)
	if err != nil {
		t.Fatalf("HmacSecretKeyFromSlice: %v", err)
	}
	return k
}

func mustTag(t *testing.T, hexTag string) hmacsha512.HmacTag {
	t.Helper()
	b, err := hex.DecodeString(hexTag)
	if err != nil {
		t.Fatalf("hex.DecodeString(%q): %v", hexTag, err)
	}
	tag, err := hmacsha512.HmacTagFromSlice(b)
	if err != nil {
		t.Fatalf("HmacTagFromSlice: %v", err)
	}
	return tag
}

// TestRFC4231Vectors reproduces test cases 1 and 2 from RFC 4231 section 4.
func TestRFC4231Vectors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		key  []byte
		data []byte
		want string
	}{
		{
			name: "case 1",
			key:  bytes.Repeat([]byte{0x0b}, 20),
			data: []byte("Hi There"),
			want: "87aa7cdea5ef619d4ff0b4241a1d6cb02379f4e2ce4ec2787ad0b30545e17cdedaa833b7d6b8a702038b274eaea3f4e4be9d914eeb61f1702e696c203a126854",
		},
		{
			name: "case 2",
			key:  []byte("Jefe"),
			data: []byte("what do ya want for nothing?"),
			want: "164b7a7bfcf819e2e395fbe73b56e0a387bd64222e831fd610270cd7ea2505549758bf75c05a994a6d034f65f8f0e6fdcaeab1a34d4a6b4b636e070a38bce737",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			key := mustKey(t, tc.key)
			want := mustTag(t, tc.want)

			if got := hmacsha512.MAC(key, tc.data); !got.Equal(want) {
				t.Errorf("MAC() = %x, want %x", got.Bytes(), want.Bytes())
			}

			st := hmacsha512.Init(key)
			for i := range tc.data {
				if err := st.Update(tc.data[i : i+1]); err != nil {
					t.Fatalf("Update: %v", err)
				}
			}
			got, err := st.Finalize()
			if err != nil {
				t.Fatalf("Finalize: %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("byte-at-a-time Finalize() = %x, want %x", got.Bytes(), want.Bytes())
			}
		})
	}
}

func TestHmacSecretKeyFromSliceRejectsBadLengths(t *testing.T) {
	t.Parallel()

	if _, err := hmacsha512.HmacSecretKeyFromSlice(nil); err != hmacsha512.ErrInvalidLength {
		t.Errorf("FromSlice(nil) err = %v, want ErrInvalidLength", err)
	}
	tooLong := make([]byte, hmacsha512.BlockSize+1)
	if _, err := hmacsha512.HmacSecretKeyFromSlice(tooLong); err != hmacsha512.ErrInvalidLength {
		t.Errorf("FromSlice(%d bytes) err = %v, want ErrInvalidLength", len(tooLong), err)
	}
	ok := make([]byte, hmacsha512.BlockSize)
	if _, err := hmacsha512.HmacSecretKeyFromSlice(ok); err != nil {
		t.Errorf("FromSlice(%d bytes) err = %v, want nil", len(ok), err)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	t.Parallel()

	data := []byte("what do ya want for nothing?")
	key := mustKey(t, []byte("Jefe"))
	otherKey := mustKey(t, []byte("not Jefe"))

	tag := hmacsha512.MAC(key, data)

	ok, err := hmacsha512.Verify(tag, otherKey, data)
	if ok || err != hmacsha512.ErrInvalidTag {
		t.Errorf("Verify(wrong key) = (%v, %v), want (false, ErrInvalidTag)", ok, err)
	}

	ok, err = hmacsha512.Verify(tag, key, data)
	if !ok || err != nil {
		t.Errorf("Verify(correct key) = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestFinalizeTwiceFails(t *testing.T) {
	t.Parallel()

	key := mustKey(t, []byte("Jefe"))
	st := hmacsha512.Init(key)
	if _, err := st.Finalize(); err != nil {
		t.Fatalf("first Finalize: %v", err)
	}
	if _, err := st.Finalize(); err != hmacsha512.ErrFinalized {
		t.Errorf("second Finalize() = %v, want ErrFinalized", err)
	}
	if err := st.Update([]byte("x")); err != hmacsha512.ErrFinalized {
		t.Errorf("Update after Finalize = %v, want ErrFinalized", err)
	}
}

func TestResetReproducesFreshState(t *testing.T) {
	t.Parallel()

	key := mustKey(t, []byte("Jefe"))
	data := []byte("what do ya want for nothing?")

	st := hmacsha512.Init(key)
	if err := st.Update(data); err != nil {
		t.Fatalf("Update: %v", err)
	}
	firstTag, err := st.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	st.Reset()
	if err := st.Update(data); err != nil {
		t.Fatalf("Update after Reset: %v", err)
	}
	secondTag, err := st.Finalize()
	if err != nil {
		t.Fatalf("Finalize after Reset: %v", err)
	}

	if !firstTag.Equal(secondTag) {
		t.Errorf("tag after Reset+replay = %x, want %x", secondTag.Bytes(), firstTag.Bytes())
	}
}

func TestStreamingPartitionsAgree(t *testing.T) {
	t.Parallel()

	key := mustKey(t, bytes.Repeat([]byte{0x0b}, 20))
	msg := make([]byte, 50)
	for i := range msg {
		msg[i] = byte(i * 11)
	}

	want := hmacsha512.MAC(key, msg)

	partitions := [][]int{
		{50},
		{1, 15, 1, 17, 16},
		{25, 25},
		{50, 0},
	}

	for _, parts := range partitions {
		st := hmacsha512.Init(key)
		off := 0
		for _, n := range parts {
			if err := st.Update(msg[off : off+n]); err != nil {
				t.Fatalf("Update: %v", err)
			}
			off += n
		}
		got, err := st.Finalize()
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if !got.Equal(want) {
			t.Errorf("partition %v: tag = %x, want %x", parts, got.Bytes(), want.Bytes())
		}
	}
}

func TestGenerateHmacSecretKeyProducesDistinctKeys(t *testing.T) {
	t.Parallel()

	a, err := hmacsha512.GenerateHmacSecretKey()
	if err != nil {
		t.Fatalf("GenerateHmacSecretKey: %v", err)
	}
	b, err := hmacsha512.GenerateHmacSecretKey()
	if err != nil {
		t.Fatalf("GenerateHmacSecretKey: %v", err)
	}
	if bytes.Equal(a.UnprotectedAsBytes(), b.UnprotectedAsBytes()) {
		t.Errorf("two GenerateHmacSecretKey() calls produced identical keys")
	}
}

func FuzzMACNeverPanics(f *testing.F) {
	f.Add([]byte("what do ya want for nothing?"))
	f.Add([]byte{})
	f.Add(make([]byte, 128))
	f.Add(make([]byte, 129))

	key, err := hmacsha512.HmacSecretKeyFromSlice([]byte("Jefe"))
	if err != nil {
		f.Fatalf("HmacSecretKeyFromSlice: %v", err)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		_ = hmacsha512.MAC(key, data)
	})
}

var sink hmacsha512.HmacTag

func BenchmarkMAC(b *testing.B) {
	key, err := hmacsha512.GenerateHmacSecretKey()
	if err != nil {
		b.Fatalf("GenerateHmacSecretKey: %v", err)
	}

	for _, length := range lengths {
		b.Run(length.name, func(b *testing.B) {
			msg := make([]byte, length.n)
			b.SetBytes(int64(length.n))
			for b.Loop() {
				sink = hmacsha512.MAC(key, msg)
			}
		})
	}
}

var lengths = []struct {
	name string
	n    int
}{
	{"16B", 16},
	{"256B", 256},
	{"1KiB", 1024},
	{"16KiB", 16 * 1024},
	{"1MiB", 1024 * 1024},
}
