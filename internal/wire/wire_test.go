package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func mustDecode(t *testing.T, b []byte) (int64, uint32, []byte) {
	t.Helper()
	ins, hits, p, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return ins, hits, p
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		insertedAt int64
		hits       uint32
		payload    []byte
	}{
		{0, 0, nil},
		{1700000000000, 3, []byte("hello")},
		{math.MaxInt64, math.MaxUint32, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := Encode(tc.insertedAt, tc.hits, tc.payload)
		ins, hits, p := mustDecode(t, enc)
		if ins != tc.insertedAt {
			t.Fatalf("insertedAt mismatch: got %d want %d", ins, tc.insertedAt)
		}
		if hits != tc.hits {
			t.Fatalf("hits mismatch: got %d want %d", hits, tc.hits)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	enc := Encode(7, 1, []byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, _, _, err := Decode(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
	if _, _, err := DecodeHeader(enc); err == nil {
		t.Fatalf("DecodeHeader should reject trailing bytes too")
	}
}

func TestDecodeCorruptHeadersAndLengths(t *testing.T) {
	enc := Encode(1, 0, []byte("abc"))

	// bad magic
	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, _, err := Decode(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	// wrong version
	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// vlen too large (announce more than available)
	tooLong := append([]byte(nil), enc...)
	// vlen sits at offset 17..20 (4 magic +1 ver +8 insertedAt +4 hits)
	binary.BigEndian.PutUint32(tooLong[17:21], uint32(len("abc")+1))
	if _, _, _, err := Decode(tooLong); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}

	// truncated buffer
	trunc := enc[:len(enc)-1]
	if _, _, _, err := Decode(trunc); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}

	// short garbage
	if _, _, _, err := Decode([]byte("LP")); err == nil {
		t.Fatalf("expected error on short buffer")
	}
}

func TestDecodeHeaderMatchesDecode(t *testing.T) {
	enc := Encode(1712345678901, 9, []byte("payload"))
	ins1, hits1, _ := mustDecode(t, enc)
	ins2, hits2, err := DecodeHeader(enc)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if ins1 != ins2 || hits1 != hits2 {
		t.Fatalf("header mismatch: (%d,%d) vs (%d,%d)", ins1, hits1, ins2, hits2)
	}
}

func TestZeroCopyPayload(t *testing.T) {
	enc := Encode(1, 0, []byte("Z"))
	_, _, p := mustDecode(t, enc)
	if len(p) != 1 {
		t.Fatalf("unexpected payload len")
	}
	// mutate payload slice. should mutate underlying enc bytes (zero-copy)
	p[0] = 'Q'
	_, _, p2 := mustDecode(t, enc)
	if p2[0] != 'Q' {
		t.Fatalf("expected zero-copy slice into enc buffer")
	}
}
