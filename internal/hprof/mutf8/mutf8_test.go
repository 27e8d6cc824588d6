package mutf8

import (
	"bytes"
	"testing"
)

func TestDecodeASCII(t *testing.T) {
	got, err := Decode([]byte("MyClass"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "MyClass" {
		t.Fatalf("got %q, want %q", got, "MyClass")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []string{"", "a", "MyClass", "Café", "0000000"}
	for _, s := range cases {
		encoded := Encode(s)
		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(Encode(%q)): %v", s, err)
		}
		if decoded != s {
			t.Errorf("round trip: got %q, want %q", decoded, s)
		}
	}
}

func TestDecodeCafeStandardUTF8(t *testing.T) {
	// "Caf\xC3\xA9" is the standard UTF-8 encoding of "Café", also valid MUTF-8.
	body := []byte{'C', 'a', 'f', 0xC3, 0xA9}
	got, err := Decode(body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "Café" {
		t.Fatalf("got %q, want %q", got, "Café")
	}
	reencoded := Encode(got)
	if !bytes.Equal(reencoded, body) {
		t.Fatalf("re-encoded %v, want %v", reencoded, body)
	}
	if len(reencoded) != 5 {
		t.Fatalf("re-encoded length = %d, want 5", len(reencoded))
	}
}

func TestDecodeTruncatedSequenceFails(t *testing.T) {
	_, err := Decode([]byte{0xC3})
	if err == nil {
		t.Fatal("expected error for truncated 2-byte sequence")
	}
}

func TestDecodeBadContinuationFails(t *testing.T) {
	_, err := Decode([]byte{0xC3, 0x00})
	if err == nil {
		t.Fatal("expected error for invalid continuation byte")
	}
}

func TestDecodeFourByteSequenceRejected(t *testing.T) {
	_, err := Decode([]byte{0xF0, 0x90, 0x80, 0x80})
	if err == nil {
		t.Fatal("expected error for unsupported 4-byte leading byte")
	}
}

func TestEncodeNulOverlong(t *testing.T) {
	encoded := Encode(string(rune(0)))
	want := []byte{0xC0, 0x80}
	if !bytes.Equal(encoded, want) {
		t.Fatalf("got %v, want %v", encoded, want)
	}
}
