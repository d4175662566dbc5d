package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

// Frame: magic(4) | ver(1) | insertedAt unix-milli (u64 be) | hits (u32 be) | vlen (u32 be) | payload(vlen)
const headerLen = 4 + 1 + 8 + 4 + 4

var (
	ErrCorrupt = errors.New("linkpreview: corrupt entry")
	magic4     = [...]byte{'L', 'P', 'R', 'V'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames a serialized entry together with its insertion time (unix
// milliseconds) and accumulated hit count.
func Encode(insertedAt int64, hits uint32, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(headerLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(insertedAt))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], hits)
	buf.Write(u4[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode validates the frame and returns its metadata plus the payload bytes.
// The payload is a zero-copy subslice of b.
func Decode(b []byte) (insertedAt int64, hits uint32, payload []byte, err error) {
	insertedAt, hits, vlen, err := header(b)
	if err != nil {
		return 0, 0, nil, err
	}
	return insertedAt, hits, b[headerLen : headerLen+vlen], nil
}

// DecodeHeader validates the frame and returns its metadata without touching
// the payload. Eviction scans use this to read entry ages cheaply.
func DecodeHeader(b []byte) (insertedAt int64, hits uint32, err error) {
	insertedAt, hits, _, err = header(b)
	return insertedAt, hits, err
}

func header(b []byte) (int64, uint32, int, error) {
	if len(b) < headerLen || !hasMagic(b) || b[4] != version {
		return 0, 0, 0, ErrCorrupt
	}

	off := 5

	insertedAt := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	hits := binary.BigEndian.Uint32(b[off : off+4])
	off += 4

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4

	// strict framing: announced length must account for every remaining byte
	if vlen < 0 || vlen != len(b)-off {
		return 0, 0, 0, ErrCorrupt
	}
	return insertedAt, hits, vlen, nil
}
