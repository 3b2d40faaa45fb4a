package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func mustDecodeEntry(t *testing.T, b []byte) (time.Time, []byte) {
	t.Helper()
	at, p, err := DecodeEntry(b)
	if err != nil {
		t.Fatalf("DecodeEntry error: %v", err)
	}
	return at, p
}

func TestEntryRTEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		at      time.Time
		payload []byte
	}{
		{time.Unix(0, 0), nil},
		{time.Unix(1700000000, 0), []byte("hello")},
		{time.Unix(1, 0), []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := EncodeEntry(tc.at, tc.payload)
		at, p := mustDecodeEntry(t, enc)
		if !at.Equal(tc.at) {
			t.Fatalf("fetchedAt mismatch: got %v want %v", at, tc.at)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestEntrySubsecondTruncated(t *testing.T) {
	at := time.Unix(1700000000, 999_999_999)
	enc := EncodeEntry(at, []byte("x"))
	got, _ := mustDecodeEntry(t, enc)
	if !got.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("expected second precision, got %v", got)
	}
}

func TestEntryRejectsTrailingBytes(t *testing.T) {
	enc := EncodeEntry(time.Unix(7, 0), []byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, _, err := DecodeEntry(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestEntryCorruptHeadersAndLengths(t *testing.T) {
	enc := EncodeEntry(time.Unix(42, 0), []byte("abc"))

	// bad magic
	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := DecodeEntry(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	// wrong version
	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := DecodeEntry(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// wrong kind
	badKind := append([]byte(nil), enc...)
	badKind[5] = kindEntry + 1
	if _, _, err := DecodeEntry(badKind); err == nil {
		t.Fatalf("expected error on bad kind")
	}

	// vlen too large (announce more than available)
	tooLong := append([]byte(nil), enc...)
	// vlen is at offset 14..17 (4 magic +1 ver +1 kind +8 fetchedAt)
	binary.BigEndian.PutUint32(tooLong[14:18], uint32(len("abc")+1))
	if _, _, err := DecodeEntry(tooLong); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}

	// truncated buffer
	trunc := enc[:len(enc)-1]
	if _, _, err := DecodeEntry(trunc); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
}

func TestEntryZeroCopyPayload(t *testing.T) {
	enc := EncodeEntry(time.Unix(1, 0), []byte("Z"))
	_, p := mustDecodeEntry(t, enc)
	if len(p) != 1 {
		t.Fatalf("unexpected payload len")
	}
	// mutate payload slice. should mutate underlying enc bytes (zero-copy)
	p[0] = 'Q'
	_, p2 := mustDecodeEntry(t, enc)
	if p2[0] != 'Q' {
		t.Fatalf("expected zero-copy slice into enc buffer")
	}
}
