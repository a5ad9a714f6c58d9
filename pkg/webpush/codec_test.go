package webpush

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// Lengths chosen so every padding case (0, 1 and 2 '=' chars) occurs.
	for _, n := range []int{0, 1, 2, 3, 4, 15, 16, 17, 31, 32, 33, 65} {
		raw := make([]byte, n)
		for i := range raw {
			raw[i] = byte(i * 7)
		}
		out, err := Decode(Encode(raw))
		if err != nil {
			t.Fatalf("len %d: unexpected error: %v", n, err)
		}
		if !bytes.Equal(out, raw) {
			t.Fatalf("len %d: round trip mismatch: got %x want %x", n, out, raw)
		}
	}
}

func TestEncodeOmitsPadding(t *testing.T) {
	s := Encode([]byte{0xff})
	if s != "_w" {
		t.Fatalf("got %q, want %q", s, "_w")
	}
}

func TestDecodeToleratesPadding(t *testing.T) {
	raw := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 3, 239}
	padded := base64.URLEncoding.EncodeToString(raw)
	if padded[len(padded)-1] != '=' {
		t.Fatalf("test input %q should be padded", padded)
	}
	out, err := Decode(padded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Fatalf("got %x, want %x", out, raw)
	}
}

func TestDecodeRejectsInvalidAlphabet(t *testing.T) {
	for _, s := range []string{"ab+c", "ab/c", "a b", "a*c"} {
		if _, err := Decode(s); err == nil {
			t.Errorf("Decode(%q) should fail", s)
		}
	}
}
