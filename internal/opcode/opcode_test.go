package opcode_test

import (
	"testing"

	"github.com/wasmtools/wevent/internal/opcode"
)

func TestLookupKnownOpcodes(t *testing.T) {
	tests := []struct {
		code byte
		name string
		imm  opcode.ImmKind
	}{
		{0x00, "unreachable", opcode.ImmNone},
		{0x02, "block", opcode.ImmBlockType},
		{0x0C, "br", opcode.ImmBrDepth},
		{0x0E, "br_table", opcode.ImmBrTable},
		{0x10, "call", opcode.ImmFuncIndex},
		{0x11, "call_indirect", opcode.ImmCallIndirect},
		{0x20, "get_local", opcode.ImmLocalIndex},
		{0x23, "get_global", opcode.ImmGlobalIndex},
		{0x28, "i32_load", opcode.ImmMemory},
		{0x3F, "current_memory", opcode.ImmMemoryReserved},
		{0x41, "i32_const", opcode.ImmI32Const},
		{0x42, "i64_const", opcode.ImmI64Const},
		{0x43, "f32_const", opcode.ImmF32Const},
		{0x44, "f64_const", opcode.ImmF64Const},
		{0x6A, "i32_add", opcode.ImmNone},
		{0xA8, "i32_trunc_s_f32", opcode.ImmNone},
	}

	for _, tt := range tests {
		info, ok := opcode.Lookup(tt.code)
		if !ok {
			t.Fatalf("0x%02x: not found", tt.code)
		}
		if info.Name != tt.name {
			t.Errorf("0x%02x: name = %q, want %q", tt.code, info.Name, tt.name)
		}
		if info.Imm != tt.imm {
			t.Errorf("0x%02x: imm = %v, want %v", tt.code, info.Imm, tt.imm)
		}
	}
}

func TestLookupUnknownOpcode(t *testing.T) {
	if _, ok := opcode.Lookup(0x06); ok {
		t.Errorf("0x06 should be unassigned in this opcode set")
	}
}

func TestNaturalAlignment(t *testing.T) {
	tests := []struct {
		code  byte
		align uint32
	}{
		{0x28, 2}, // i32.load, 4-byte natural alignment -> log2 == 2
		{0x29, 3}, // i64.load, 8-byte -> log2 == 3
		{0x2C, 0}, // i32.load8_s, 1-byte -> log2 == 0
		{0x2E, 1}, // i32.load16_s, 2-byte -> log2 == 1
	}
	for _, tt := range tests {
		info, ok := opcode.Lookup(tt.code)
		if !ok {
			t.Fatalf("0x%02x: not found", tt.code)
		}
		if info.NaturalAlign != tt.align {
			t.Errorf("0x%02x: NaturalAlign = %d, want %d", tt.code, info.NaturalAlign, tt.align)
		}
	}
}

func TestMnemonicRewrite(t *testing.T) {
	tests := []struct {
		code byte
		want string
	}{
		{0x6A, "i32.add"},
		{0xA8, "i32.trunc_s/f32"},
		{0xAC, "i64.extend_s/i32"},
		{0x20, "get_local"},      // no type prefix: untouched
		{0x0E, "br_table"},      // no type prefix: untouched
		{0x3F, "current_memory"}, // no type prefix: untouched
		{0x41, "i32.const"},
	}
	for _, tt := range tests {
		if got := opcode.Mnemonic(tt.code); got != tt.want {
			t.Errorf("Mnemonic(0x%02x) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
