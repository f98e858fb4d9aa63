// Package rlp implements the recursive length prefix encoding used by the
// Ethereum wire format. The reader is strict: every item must use the
// shortest possible encoding and declared lengths must match the bytes
// actually present, so a payload either parses canonically or fails.
package rlp

import (
	"encoding/binary"
	"errors"
)

var (
	ErrTruncated      = errors.New("rlp: input too short for declared length")
	ErrNonCanonical   = errors.New("rlp: non-canonical encoding")
	ErrExpectedString = errors.New("rlp: expected string, got list")
	ErrExpectedList   = errors.New("rlp: expected list, got string")
	ErrLeadingZero    = errors.New("rlp: integer encoded with leading zero bytes")
	ErrUintOverflow   = errors.New("rlp: integer exceeds target width")
)

// Reader consumes RLP items from a byte slice. A Reader obtained from List
// covers exactly the list payload; its parent has already advanced past it.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Empty reports whether all input has been consumed.
func (r *Reader) Empty() bool {
	return r.pos >= len(r.buf)
}

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// header decodes the next item header without consuming the payload.
// It returns the payload offset from r.pos and the payload size.
func (r *Reader) header(wantList bool) (offset, size int, err error) {
	if r.Empty() {
		return 0, 0, ErrTruncated
	}
	b := r.buf[r.pos]
	switch {
	case b <= 0x7f: // single-byte string
		if wantList {
			return 0, 0, ErrExpectedList
		}
		return 0, 1, nil
	case b <= 0xb7: // short string
		if wantList {
			return 0, 0, ErrExpectedList
		}
		size = int(b - 0x80)
		if size == 1 && r.pos+1 < len(r.buf) && r.buf[r.pos+1] <= 0x7f {
			// must have been encoded as the byte itself
			return 0, 0, ErrNonCanonical
		}
		return 1, size, nil
	case b <= 0xbf: // long string
		if wantList {
			return 0, 0, ErrExpectedList
		}
		return r.longHeader(int(b-0xb7), 0xb7)
	case b <= 0xf7: // short list
		if !wantList {
			return 0, 0, ErrExpectedString
		}
		return 1, int(b - 0xc0), nil
	default: // long list
		if !wantList {
			return 0, 0, ErrExpectedString
		}
		return r.longHeader(int(b-0xf7), 0xf7)
	}
}

// longHeader handles the length-of-length form shared by long strings and
// long lists.
func (r *Reader) longHeader(sizeLen int, base byte) (offset, size int, err error) {
	if r.Remaining() < 1+sizeLen {
		return 0, 0, ErrTruncated
	}
	sizeBytes := r.buf[r.pos+1 : r.pos+1+sizeLen]
	if sizeBytes[0] == 0 {
		return 0, 0, ErrNonCanonical
	}
	if sizeLen > 8 {
		return 0, 0, ErrUintOverflow
	}
	var n uint64
	for _, c := range sizeBytes {
		n = n<<8 | uint64(c)
	}
	if n <= 55 {
		// should have used the short form
		return 0, 0, ErrNonCanonical
	}
	if n > uint64(len(r.buf)) {
		return 0, 0, ErrTruncated
	}
	return 1 + sizeLen, int(n), nil
}

// Bytes consumes the next item, which must be a string, and returns its
// payload.
func (r *Reader) Bytes() ([]byte, error) {
	offset, size, err := r.header(false)
	if err != nil {
		return nil, err
	}
	start := r.pos + offset
	if start+size > len(r.buf) {
		return nil, ErrTruncated
	}
	r.pos = start + size
	return r.buf[start : start+size], nil
}

// IntBytes consumes a string item holding a canonical big-endian integer of
// at most maxLen bytes. The empty string denotes zero; leading zero bytes
// are rejected.
func (r *Reader) IntBytes(maxLen int) ([]byte, error) {
	b, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	if len(b) > 0 && b[0] == 0 {
		return nil, ErrLeadingZero
	}
	if len(b) > maxLen {
		return nil, ErrUintOverflow
	}
	return b, nil
}

// Uint64 consumes a canonical unsigned integer of at most 8 bytes.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.IntBytes(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// List consumes the next item, which must be a list, and returns a Reader
// over its payload. The parent Reader is advanced past the whole list.
func (r *Reader) List() (*Reader, error) {
	offset, size, err := r.header(true)
	if err != nil {
		return nil, err
	}
	start := r.pos + offset
	if start+size > len(r.buf) {
		return nil, ErrTruncated
	}
	r.pos = start + size
	return &Reader{buf: r.buf[start : start+size]}, nil
}

// AppendString appends the RLP encoding of a byte string to dst.
func AppendString(dst, b []byte) []byte {
	if len(b) == 1 && b[0] <= 0x7f {
		return append(dst, b[0])
	}
	dst = appendSize(dst, len(b), 0x80)
	return append(dst, b...)
}

// AppendUint64 appends the canonical integer encoding of v to dst.
func AppendUint64(dst []byte, v uint64) []byte {
	if v == 0 {
		return append(dst, 0x80)
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	i := 0
	for tmp[i] == 0 {
		i++
	}
	return AppendString(dst, tmp[i:])
}

// WrapList prefixes payload with a list header and returns the complete
// list encoding.
func WrapList(payload []byte) []byte {
	out := appendSize(nil, len(payload), 0xc0)
	return append(out, payload...)
}

// appendSize appends a short- or long-form size header with the given tag
// base (0x80 for strings, 0xc0 for lists).
func appendSize(dst []byte, size int, base byte) []byte {
	if size <= 55 {
		return append(dst, base+byte(size))
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(size))
	i := 0
	for tmp[i] == 0 {
		i++
	}
	dst = append(dst, base+55+byte(8-i))
	return append(dst, tmp[i:]...)
}
