package codec

import (
	"strings"
	"testing"
)

type snapshot struct {
	Status int    `json:"status" msgpack:"status" cbor:"status"`
	Body   []byte `json:"body" msgpack:"body" cbor:"body"`
}

func roundTrip(t *testing.T, c Codec[snapshot], name string) {
	t.Helper()
	in := snapshot{Status: 200, Body: []byte(`{"word":"hund"}`)}
	b, err := c.Encode(in)
	if err != nil {
		t.Fatalf("%s encode: %v", name, err)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatalf("%s decode: %v", name, err)
	}
	if out.Status != in.Status || string(out.Body) != string(in.Body) {
		t.Fatalf("%s round-trip mismatch: %+v", name, out)
	}
}

func TestCodecsRoundTrip(t *testing.T) {
	roundTrip(t, JSON[snapshot]{}, "json")
	roundTrip(t, Msgpack[snapshot]{}, "msgpack")
	roundTrip(t, MustCBOR[snapshot](false), "cbor")
	roundTrip(t, MustCBOR[snapshot](true), "cbor-deterministic")
}

func TestLimitRejectsOversizeDecode(t *testing.T) {
	c := Limit[snapshot]{Inner: JSON[snapshot]{}, MaxDecode: 8}

	in := snapshot{Status: 200, Body: []byte("a body well past eight bytes")}
	b, err := c.Encode(in) // Encode is never limited
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := c.Decode(b); err == nil || !strings.Contains(err.Error(), "payload too large") {
		t.Fatalf("expected size error, got %v", err)
	}

	// Disabled limit passes through.
	c.MaxDecode = 0
	if _, err := c.Decode(b); err != nil {
		t.Fatalf("unlimited decode: %v", err)
	}
}
