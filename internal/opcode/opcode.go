// Package opcode is the single source of truth for per-operator shape: the
// byte code, its canonical (underscore) mnemonic, which immediates follow
// it, and — for memory operations — the natural alignment the
// disassembler elides by default. Both the emitter's operator codec
// (spec.md §4.4) and the disassembler's operand printer (spec.md §4.5)
// look values up here instead of each keeping a private copy.
package opcode

import "regexp"

// ImmKind identifies the shape of the immediate(s) that follow an opcode.
type ImmKind int

const (
	// ImmNone: no immediates follow.
	ImmNone ImmKind = iota
	// ImmBlockType: a single signed blockType (block, loop, if).
	ImmBlockType
	// ImmBrDepth: a single varuint branch depth (br, br_if).
	ImmBrDepth
	// ImmBrTable: a varuint count followed by count+1 varuint targets (br_table).
	ImmBrTable
	// ImmFuncIndex: a single varuint function index (call).
	ImmFuncIndex
	// ImmCallIndirect: a varuint type index followed by a reserved varuint 0.
	ImmCallIndirect
	// ImmLocalIndex: a single varuint local index.
	ImmLocalIndex
	// ImmGlobalIndex: a single varuint global index.
	ImmGlobalIndex
	// ImmMemory: a memory access immediate (flags, offset).
	ImmMemory
	// ImmMemoryReserved: a single reserved varuint 0 (current_memory, grow_memory).
	ImmMemoryReserved
	// ImmI32Const: a signed varint32 literal.
	ImmI32Const
	// ImmI64Const: the raw 8-byte i64 payload.
	ImmI64Const
	// ImmF32Const: 4 raw IEEE-754 bytes.
	ImmF32Const
	// ImmF64Const: 8 raw IEEE-754 bytes.
	ImmF64Const
)

// Info describes one opcode.
type Info struct {
	Name string
	Imm  ImmKind
	// NaturalAlign is log2 of the natural alignment in bytes, meaningful
	// only when Imm == ImmMemory; it is the "default" flags value the
	// disassembler elides from printed output.
	NaturalAlign uint32
}

// Lookup returns the Info for a one-byte opcode.
func Lookup(code byte) (Info, bool) {
	info, ok := table[code]
	return info, ok
}

// Name returns the canonical underscore-form mnemonic for code, or "" if
// the opcode is unknown.
func Name(code byte) string {
	return table[code].Name
}

var (
	typePrefix = regexp.MustCompile(`^(i32|i64|f32|f64)_`)
	typeSuffix = regexp.MustCompile(`_(i32|i64|f32|f64)$`)
)

// Mnemonic returns the printed token for code: the canonical name with a
// leading "iNN_"/"fNN_" rewritten to a dotted namespace and a trailing
// "_iNN"/"_fNN" rewritten to a slash-qualified source type, so
// "i32_add" prints as "i32.add" and "i32_trunc_s_f32" as "i32.trunc_s/f32".
func Mnemonic(code byte) string {
	name := table[code].Name
	name = typePrefix.ReplaceAllString(name, "$1.")
	name = typeSuffix.ReplaceAllString(name, "/$1")
	return name
}

func mem(name string, align uint32) Info { return Info{Name: name, Imm: ImmMemory, NaturalAlign: align} }
func op(name string) Info                { return Info{Name: name, Imm: ImmNone} }

var table = map[byte]Info{
	0x00: op("unreachable"),
	0x01: op("nop"),
	0x02: {Name: "block", Imm: ImmBlockType},
	0x03: {Name: "loop", Imm: ImmBlockType},
	0x04: {Name: "if", Imm: ImmBlockType},
	0x05: op("else"),
	0x0B: op("end"),
	0x0C: {Name: "br", Imm: ImmBrDepth},
	0x0D: {Name: "br_if", Imm: ImmBrDepth},
	0x0E: {Name: "br_table", Imm: ImmBrTable},
	0x0F: op("return"),
	0x10: {Name: "call", Imm: ImmFuncIndex},
	0x11: {Name: "call_indirect", Imm: ImmCallIndirect},

	0x1A: op("drop"),
	0x1B: op("select"),

	0x20: {Name: "get_local", Imm: ImmLocalIndex},
	0x21: {Name: "set_local", Imm: ImmLocalIndex},
	0x22: {Name: "tee_local", Imm: ImmLocalIndex},
	0x23: {Name: "get_global", Imm: ImmGlobalIndex},
	0x24: {Name: "set_global", Imm: ImmGlobalIndex},

	0x28: mem("i32_load", 2),
	0x29: mem("i64_load", 3),
	0x2A: mem("f32_load", 2),
	0x2B: mem("f64_load", 3),
	0x2C: mem("i32_load8_s", 0),
	0x2D: mem("i32_load8_u", 0),
	0x2E: mem("i32_load16_s", 1),
	0x2F: mem("i32_load16_u", 1),
	0x30: mem("i64_load8_s", 0),
	0x31: mem("i64_load8_u", 0),
	0x32: mem("i64_load16_s", 1),
	0x33: mem("i64_load16_u", 1),
	0x34: mem("i64_load32_s", 2),
	0x35: mem("i64_load32_u", 2),
	0x36: mem("i32_store", 2),
	0x37: mem("i64_store", 3),
	0x38: mem("f32_store", 2),
	0x39: mem("f64_store", 3),
	0x3A: mem("i32_store8", 0),
	0x3B: mem("i32_store16", 1),
	0x3C: mem("i64_store8", 0),
	0x3D: mem("i64_store16", 1),
	0x3E: mem("i64_store32", 2),
	0x3F: {Name: "current_memory", Imm: ImmMemoryReserved},
	0x40: {Name: "grow_memory", Imm: ImmMemoryReserved},

	0x41: {Name: "i32_const", Imm: ImmI32Const},
	0x42: {Name: "i64_const", Imm: ImmI64Const},
	0x43: {Name: "f32_const", Imm: ImmF32Const},
	0x44: {Name: "f64_const", Imm: ImmF64Const},

	0x45: op("i32_eqz"),
	0x46: op("i32_eq"),
	0x47: op("i32_ne"),
	0x48: op("i32_lt_s"),
	0x49: op("i32_lt_u"),
	0x4A: op("i32_gt_s"),
	0x4B: op("i32_gt_u"),
	0x4C: op("i32_le_s"),
	0x4D: op("i32_le_u"),
	0x4E: op("i32_ge_s"),
	0x4F: op("i32_ge_u"),
	0x50: op("i64_eqz"),
	0x51: op("i64_eq"),
	0x52: op("i64_ne"),
	0x53: op("i64_lt_s"),
	0x54: op("i64_lt_u"),
	0x55: op("i64_gt_s"),
	0x56: op("i64_gt_u"),
	0x57: op("i64_le_s"),
	0x58: op("i64_le_u"),
	0x59: op("i64_ge_s"),
	0x5A: op("i64_ge_u"),
	0x5B: op("f32_eq"),
	0x5C: op("f32_ne"),
	0x5D: op("f32_lt"),
	0x5E: op("f32_gt"),
	0x5F: op("f32_le"),
	0x60: op("f32_ge"),
	0x61: op("f64_eq"),
	0x62: op("f64_ne"),
	0x63: op("f64_lt"),
	0x64: op("f64_gt"),
	0x65: op("f64_le"),
	0x66: op("f64_ge"),

	0x67: op("i32_clz"),
	0x68: op("i32_ctz"),
	0x69: op("i32_popcnt"),
	0x6A: op("i32_add"),
	0x6B: op("i32_sub"),
	0x6C: op("i32_mul"),
	0x6D: op("i32_div_s"),
	0x6E: op("i32_div_u"),
	0x6F: op("i32_rem_s"),
	0x70: op("i32_rem_u"),
	0x71: op("i32_and"),
	0x72: op("i32_or"),
	0x73: op("i32_xor"),
	0x74: op("i32_shl"),
	0x75: op("i32_shr_s"),
	0x76: op("i32_shr_u"),
	0x77: op("i32_rotl"),
	0x78: op("i32_rotr"),
	0x79: op("i64_clz"),
	0x7A: op("i64_ctz"),
	0x7B: op("i64_popcnt"),
	0x7C: op("i64_add"),
	0x7D: op("i64_sub"),
	0x7E: op("i64_mul"),
	0x7F: op("i64_div_s"),
	0x80: op("i64_div_u"),
	0x81: op("i64_rem_s"),
	0x82: op("i64_rem_u"),
	0x83: op("i64_and"),
	0x84: op("i64_or"),
	0x85: op("i64_xor"),
	0x86: op("i64_shl"),
	0x87: op("i64_shr_s"),
	0x88: op("i64_shr_u"),
	0x89: op("i64_rotl"),
	0x8A: op("i64_rotr"),
	0x8B: op("f32_abs"),
	0x8C: op("f32_neg"),
	0x8D: op("f32_ceil"),
	0x8E: op("f32_floor"),
	0x8F: op("f32_trunc"),
	0x90: op("f32_nearest"),
	0x91: op("f32_sqrt"),
	0x92: op("f32_add"),
	0x93: op("f32_sub"),
	0x94: op("f32_mul"),
	0x95: op("f32_div"),
	0x96: op("f32_min"),
	0x97: op("f32_max"),
	0x98: op("f32_copysign"),
	0x99: op("f64_abs"),
	0x9A: op("f64_neg"),
	0x9B: op("f64_ceil"),
	0x9C: op("f64_floor"),
	0x9D: op("f64_trunc"),
	0x9E: op("f64_nearest"),
	0x9F: op("f64_sqrt"),
	0xA0: op("f64_add"),
	0xA1: op("f64_sub"),
	0xA2: op("f64_mul"),
	0xA3: op("f64_div"),
	0xA4: op("f64_min"),
	0xA5: op("f64_max"),
	0xA6: op("f64_copysign"),

	0xA7: op("i32_wrap_i64"),
	0xA8: op("i32_trunc_s_f32"),
	0xA9: op("i32_trunc_u_f32"),
	0xAA: op("i32_trunc_s_f64"),
	0xAB: op("i32_trunc_u_f64"),
	0xAC: op("i64_extend_s_i32"),
	0xAD: op("i64_extend_u_i32"),
	0xAE: op("i64_trunc_s_f32"),
	0xAF: op("i64_trunc_u_f32"),
	0xB0: op("i64_trunc_s_f64"),
	0xB1: op("i64_trunc_u_f64"),
	0xB2: op("f32_convert_s_i32"),
	0xB3: op("f32_convert_u_i32"),
	0xB4: op("f32_convert_s_i64"),
	0xB5: op("f32_convert_u_i64"),
	0xB6: op("f32_demote_f64"),
	0xB7: op("f64_convert_s_i32"),
	0xB8: op("f64_convert_u_i32"),
	0xB9: op("f64_convert_s_i64"),
	0xBA: op("f64_convert_u_i64"),
	0xBB: op("f64_promote_f32"),
	0xBC: op("i32_reinterpret_f32"),
	0xBD: op("i64_reinterpret_f64"),
	0xBE: op("f32_reinterpret_i32"),
	0xBF: op("f64_reinterpret_i64"),
}
