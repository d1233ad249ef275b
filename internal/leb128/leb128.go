// Package leb128 implements the LEB128 codec and the patchable fixed-width
// slot the emitter's back-patching relies on (spec.md §4.1).
package leb128

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ErrOverflow is returned when PatchVarUint32 is given a value at or above
// 2^32, and when a decoded value exceeds the width this package's
// read-side helpers support.
var ErrOverflow = errors.New("leb128: overflow")

// PatchSlotWidth is the fixed width of a reserved, back-patchable slot: the
// maximal LEB128 encoding of any u32 value, written speculatively and
// overwritten once the real value is known.
const PatchSlotWidth = 5

// Writer accumulates bytes and supports overwriting an earlier position,
// which is what makes single-pass section/body-length back-patching
// possible without rewinding the underlying stream.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// Bytes returns the written bytes. The returned slice aliases the Writer's
// internal storage; callers that retain it across further writes must copy.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Byte writes a single byte.
func (w *Writer) Byte(b byte) { w.buf.WriteByte(b) }

// WriteBytes writes a byte slice verbatim.
func (w *Writer) WriteBytes(b []byte) { w.buf.Write(b) }

// WriteVarUint writes v as unsigned LEB128: 7-bit groups, least significant
// first, continuation bit set on every byte but the last.
func (w *Writer) WriteVarUint(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

// WriteVarInt writes v as signed LEB128: emits 7-bit groups until the
// remaining sign-extended bits already match the final group's sign bit.
func (w *Writer) WriteVarInt(v int64) {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		w.buf.WriteByte(b)
	}
}

// WriteInt64Raw writes the 8-byte payload the parser decoded for an
// i64.const operand, bit-exact — the parser already holds the LEB-decoded
// bytes, so this is a passthrough rather than a re-encode (spec.md §4.1).
func (w *Writer) WriteInt64Raw(payload [8]byte) {
	w.buf.Write(payload[:])
}

// WriteFloat32 writes v's IEEE-754 bits, little-endian, 4 bytes.
func (w *Writer) WriteFloat32(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.buf.Write(b[:])
}

// WriteFloat64 writes v's IEEE-754 bits, little-endian, 8 bytes.
func (w *Writer) WriteFloat64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

// WritePatchableVarUint32 reserves a fixed PatchSlotWidth-byte slot —
// 0x80 0x80 0x80 0x80 0x00, the maximal encoding of any u32 — and returns
// its starting offset for a later PatchVarUint32 call. This trades a few
// bytes of non-canonical padding for single-pass streaming emission
// (spec.md §9): the alternative, measuring the section/body first, would
// require buffering the whole payload before writing anything.
func (w *Writer) WritePatchableVarUint32() int {
	pos := w.buf.Len()
	w.buf.Write([]byte{0x80, 0x80, 0x80, 0x80, 0x00})
	return pos
}

// PatchVarUint32 overwrites the PatchSlotWidth-byte slot reserved at pos
// with the canonical 5-byte encoding of v. Values at or above 2^32 are
// rejected rather than silently truncated or corrupting the following
// byte (spec.md §9, Open Question 3).
func PatchVarUint32(dst []byte, pos int, v uint64) error {
	if v > math.MaxUint32 {
		return ErrOverflow
	}
	u := uint32(v)
	for i := 0; i < 4; i++ {
		dst[pos+i] = byte(u&0x7f) | 0x80
		u >>= 7
	}
	dst[pos+4] = byte(u & 0x7f)
	return nil
}

// ReadVarUint decodes an unsigned LEB128 value up to 32 bits, used by this
// package's own round-trip tests.
func ReadVarUint(r io.ByteReader) (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, ErrOverflow
		}
	}
}

// ReadVarInt decodes a signed LEB128 value up to 32 bits, used by this
// package's own round-trip tests.
func ReadVarInt(r io.ByteReader) (int32, error) {
	var result int32
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 35 {
			return 0, ErrOverflow
		}
	}
	if shift < 32 && b&0x40 != 0 {
		result |= ^int32(0) << shift
	}
	return result, nil
}
