/*
NAME
  reader.go

DESCRIPTION
  reader.go implements a position-tracked, big-endian byte cursor over an
  immutable byte slice, plus the read-if-expected combinator that the
  LevelSetup and Sprite codecs use to express every optional and every
  tagged payload in the on-disk formats.

LICENSE
  SPDX-License-Identifier: MIT
*/

// Package bkreader implements a big-endian, position-tracked cursor over an
// immutable byte slice.
package bkreader

import (
	"math"

	"github.com/bk64tools/bkasset/bkerr"
)

// Reader is a stateful cursor over an immutable byte slice. It performs no
// validation beyond bounds checking; callers are expected to know the shape
// of the format they're reading.
type Reader struct {
	buf []byte
	off int
}

// New returns a Reader positioned at the start of buf. buf is not copied;
// the caller must not mutate it while the Reader is in use.
func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the reader's current byte offset.
func (r *Reader) Offset() int { return r.off }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.off }

// Bytes returns a reference to the unread portion of the underlying slice.
func (r *Reader) Bytes() []byte { return r.buf[r.off:] }

func (r *Reader) need(phase string, n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, bkerr.Newf(phase, r.off, bkerr.KindTruncated,
			"need %d bytes, have %d", n, len(r.buf)-r.off)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// U8 reads an unsigned 8-bit integer.
func (r *Reader) U8(phase string) (uint8, error) {
	b, err := r.need(phase, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I8 reads a signed 8-bit integer.
func (r *Reader) I8(phase string) (int8, error) {
	v, err := r.U8(phase)
	return int8(v), err
}

// U16 reads a big-endian unsigned 16-bit integer.
func (r *Reader) U16(phase string) (uint16, error) {
	b, err := r.need(phase, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// I16 reads a big-endian signed 16-bit integer.
func (r *Reader) I16(phase string) (int16, error) {
	v, err := r.U16(phase)
	return int16(v), err
}

// U32 reads a big-endian unsigned 32-bit integer.
func (r *Reader) U32(phase string) (uint32, error) {
	b, err := r.need(phase, 4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// I32 reads a big-endian signed 32-bit integer.
func (r *Reader) I32(phase string) (int32, error) {
	v, err := r.U32(phase)
	return int32(v), err
}

// F32 reads a big-endian IEEE-754 32-bit float.
func (r *Reader) F32(phase string) (float32, error) {
	v, err := r.U32(phase)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Raw reads n raw bytes verbatim.
func (r *Reader) Raw(phase string, n int) ([]byte, error) {
	b, err := r.need(phase, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Peek returns the next byte without advancing the cursor.
func (r *Reader) Peek(phase string) (byte, error) {
	if r.off >= len(r.buf) {
		return 0, bkerr.Newf(phase, r.off, bkerr.KindTruncated, "need 1 byte, have 0")
	}
	return r.buf[r.off], nil
}

// IfExpected peeks the next byte; if it equals expected, the byte is
// consumed and fn is run, with ok=true. Otherwise the cursor is left
// untouched and ok is false. This is the pivotal combinator described in
// spec.md §4.1: every optional and every tagged payload in the LevelSetup
// format is expressed through it, because a single on-disk byte serves as
// both a presence flag and a variant discriminator.
func IfExpected[T any](r *Reader, phase string, expected byte, fn func(*Reader) (T, error)) (T, bool, error) {
	var zero T
	if r.off >= len(r.buf) {
		return zero, false, nil
	}
	if r.buf[r.off] != expected {
		return zero, false, nil
	}
	r.off++
	v, err := fn(r)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// ReadN collects n values produced by fn in order.
func ReadN[T any](r *Reader, n int, fn func(*Reader) (T, error)) ([]T, error) {
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := fn(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// AlignUp advances the cursor to the next multiple of m bytes. m must be a
// power of two. If the cursor is already aligned, it is left untouched.
func (r *Reader) AlignUp(m int) {
	rem := r.off % m
	if rem != 0 {
		r.off += m - rem
	}
}
