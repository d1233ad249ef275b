package leb128_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/wasmtools/wevent/internal/leb128"
)

func TestWriteVarUint(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   uint64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x01}, 255},
		{[]byte{0x80, 0x02}, 256},
		{[]byte{0xff, 0x7f}, 16383},
		{[]byte{0x80, 0x80, 0x01}, 16384},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			w := leb128.NewWriter()
			w.WriteVarUint(tt.value)
			if !bytes.Equal(w.Bytes(), tt.encoded) {
				t.Errorf("encode %d: got %v, want %v", tt.value, w.Bytes(), tt.encoded)
			}

			r := bytes.NewReader(tt.encoded)
			got, err := leb128.ReadVarUint(r)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if uint64(got) != tt.value {
				t.Errorf("decode: got %d, want %d", got, tt.value)
			}
		})
	}
}

func TestWriteVarInt(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, -1},
		{[]byte{0x3f}, 63},
		{[]byte{0xc0, 0x00}, 64},
		{[]byte{0x40}, -64},
		{[]byte{0xbf, 0x7f}, -65},
		{[]byte{0xff, 0x00}, 127},
		{[]byte{0x80, 0x7f}, -128},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x7e}, -129},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			w := leb128.NewWriter()
			w.WriteVarInt(tt.value)
			if !bytes.Equal(w.Bytes(), tt.encoded) {
				t.Errorf("encode %d: got %v, want %v", tt.value, w.Bytes(), tt.encoded)
			}

			r := bytes.NewReader(tt.encoded)
			got, err := leb128.ReadVarInt(r)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if int64(got) != tt.value {
				t.Errorf("decode: got %d, want %d", got, tt.value)
			}
		})
	}
}

func TestPatchableVarUint32(t *testing.T) {
	w := leb128.NewWriter()
	w.Byte(0xAA) // leading byte, to make sure patching doesn't touch neighbors
	pos := w.WritePatchableVarUint32()
	w.Byte(0xBB) // trailing byte

	if got := w.Len(); got != 1+leb128.PatchSlotWidth+1 {
		t.Fatalf("unexpected length %d", got)
	}

	if err := leb128.PatchVarUint32(w.Bytes(), pos, 624485); err != nil {
		t.Fatalf("patch: %v", err)
	}

	data := w.Bytes()
	if data[0] != 0xAA || data[len(data)-1] != 0xBB {
		t.Errorf("patch corrupted neighboring bytes: %v", data)
	}

	r := bytes.NewReader(data[pos : pos+leb128.PatchSlotWidth])
	got, err := leb128.ReadVarUint(r)
	if err != nil {
		t.Fatalf("decode patched slot: %v", err)
	}
	if got != 624485 {
		t.Errorf("got %d, want 624485", got)
	}
}

func TestPatchVarUint32RejectsOverflow(t *testing.T) {
	w := leb128.NewWriter()
	pos := w.WritePatchableVarUint32()
	if err := leb128.PatchVarUint32(w.Bytes(), pos, uint64(math.MaxUint32)+1); !errors.Is(err, leb128.ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestPatchableVarUint32MaxValue(t *testing.T) {
	w := leb128.NewWriter()
	pos := w.WritePatchableVarUint32()
	if err := leb128.PatchVarUint32(w.Bytes(), pos, math.MaxUint32); err != nil {
		t.Fatalf("patch: %v", err)
	}
	r := bytes.NewReader(w.Bytes()[pos : pos+leb128.PatchSlotWidth])
	got, err := leb128.ReadVarUint(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != math.MaxUint32 {
		t.Errorf("got %d, want %d", got, uint32(math.MaxUint32))
	}
}

func TestWriteInt64Raw(t *testing.T) {
	var payload [8]byte
	binary.LittleEndian.PutUint64(payload[:], 0x0102030405060708)

	w := leb128.NewWriter()
	w.WriteInt64Raw(payload)
	if !bytes.Equal(w.Bytes(), payload[:]) {
		t.Errorf("got %v, want %v", w.Bytes(), payload[:])
	}
}

func TestWriteFloat32(t *testing.T) {
	tests := []float32{0, 1.5, -3.14, 1e38}
	for _, v := range tests {
		w := leb128.NewWriter()
		w.WriteFloat32(v)
		got := math.Float32frombits(binary.LittleEndian.Uint32(w.Bytes()))
		if got != v {
			t.Errorf("got %v, want %v", got, v)
		}
	}
}

func TestWriteFloat64(t *testing.T) {
	tests := []float64{0, 1.5, -3.14, 1e308}
	for _, v := range tests {
		w := leb128.NewWriter()
		w.WriteFloat64(v)
		got := math.Float64frombits(binary.LittleEndian.Uint64(w.Bytes()))
		if got != v {
			t.Errorf("got %v, want %v", got, v)
		}
	}
}
