// Package bitio provides the LSB-first bit cursor used throughout the
// decoder: the box/codestream layer, the entropy coder, and frame-header
// field decode all read through a Reader.
//
// The Reader keeps a 64-bit sliding window (val/bitPos, refilled on
// demand) over an LSB-first packed bitstream, and adds a suspend/resume
// contract (split_at, OutOfBounds-on-short-read) so a caller can retry
// once more bytes are available instead of needing the whole stream
// buffered up front.
package bitio

import (
	"encoding/binary"

	"github.com/jxl-go/jxl/internal/xlerr"
)

const maxPeekBits = 56

// Reader is a borrowed-buffer, LSB-first bit cursor.
//
// Invariant: bitPos <= 8 after every public call returns; bytePos +
// bitPos/8 only increases (see BitsRead).
type Reader struct {
	buf    []byte
	bytePos int
	bitPos  int // 0..7, bit offset within buf[bytePos]
}

// NewReader wraps buf for reading. buf is borrowed, not copied.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// BitsRead returns the total number of bits consumed so far.
func (r *Reader) BitsRead() uint64 {
	return uint64(r.bytePos)*8 + uint64(r.bitPos)
}

// BitsAvailable returns the number of unread bits remaining in buf.
func (r *Reader) BitsAvailable() uint64 {
	total := uint64(len(r.buf)) * 8
	read := r.BitsRead()
	if read >= total {
		return 0
	}
	return total - read
}

// window returns up to maxPeekBits bits starting at the current cursor,
// LSB-first, without advancing. The second return is how many valid
// bits it actually holds (fewer than requested near EOF).
func (r *Reader) window(n int) (uint64, int) {
	if n > maxPeekBits {
		n = maxPeekBits
	}
	var v uint64
	got := 0
	bytePos, bitPos := r.bytePos, r.bitPos
	// Fast path: enough whole bytes remain to fill a uint64 load.
	if bitPos == 0 && bytePos+8 <= len(r.buf) {
		v = binary.LittleEndian.Uint64(r.buf[bytePos:])
		got = 64
	} else {
		for got < n+8 && bytePos < len(r.buf) {
			v |= uint64(r.buf[bytePos]) << uint(got)
			got += 8
			bytePos++
		}
	}
	v >>= uint(bitPos)
	got -= bitPos
	if got < 0 {
		got = 0
	}
	if got > n {
		got = n
	}
	if n < 64 {
		v &= (uint64(1) << uint(n)) - 1
	}
	return v, got
}

// Peek returns the next n (<=56) bits without advancing the cursor.
// Returns OutOfBounds if fewer than n bits remain.
func (r *Reader) Peek(n int) (uint64, error) {
	if n < 0 || n > maxPeekBits {
		return 0, xlerr.New(xlerr.ArithmeticOverflow, "peek(%d) exceeds %d bits", n, maxPeekBits)
	}
	v, got := r.window(n)
	if got < n {
		return 0, xlerr.NeedMore(uint64(n - got))
	}
	return v, nil
}

// Consume advances the cursor by n bits without reading. Fails with
// OutOfBounds if fewer than n bits remain.
func (r *Reader) Consume(n int) error {
	if uint64(n) > r.BitsAvailable() {
		return xlerr.NeedMore(uint64(n) - r.BitsAvailable())
	}
	total := r.bitPos + n
	r.bytePos += total / 8
	r.bitPos = total % 8
	return nil
}

// Read is Peek followed by Consume.
func (r *Reader) Read(n int) (uint64, error) {
	v, err := r.Peek(n)
	if err != nil {
		return 0, err
	}
	_ = r.Consume(n)
	return v, nil
}

// SkipBits is an alias for Consume, matching the spec's naming.
func (r *Reader) SkipBits(n int) error { return r.Consume(n) }

// JumpToByteBoundary advances to the next byte boundary. Fails with
// InvalidPadding if the skipped bits within the current byte are not
// all zero (per spec §4.1).
func (r *Reader) JumpToByteBoundary() error {
	if r.bitPos == 0 {
		return nil
	}
	rem := 8 - r.bitPos
	v, err := r.Peek(rem)
	if err != nil {
		return err
	}
	if v != 0 {
		return xlerr.New(xlerr.InvalidPadding, "non-zero padding bits before byte boundary")
	}
	return r.Consume(rem)
}

// SplitAt carves off a self-contained Reader over the next n bytes
// (must be byte-aligned) and returns it alongside the remainder of
// this Reader, advanced past those n bytes. This is how the frame
// decoder hands each TOC section its own cursor (spec §4.1).
func (r *Reader) SplitAt(n int) (*Reader, error) {
	if r.bitPos != 0 {
		return nil, xlerr.New(xlerr.InvalidPadding, "split_at requires byte alignment")
	}
	if r.bytePos+n > len(r.buf) {
		return nil, xlerr.NeedMore(uint64(r.bytePos+n-len(r.buf)) * 8)
	}
	section := NewReader(r.buf[r.bytePos : r.bytePos+n])
	r.bytePos += n
	return section, nil
}

// Remaining returns the unread tail of the underlying buffer, valid
// only when the cursor is byte-aligned.
func (r *Reader) Remaining() []byte {
	if r.bitPos != 0 {
		return r.buf[r.bytePos+1:]
	}
	return r.buf[r.bytePos:]
}
