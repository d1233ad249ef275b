// Package disasm implements a streaming pretty printer that consumes an
// event.Reader and produces the canonical WebAssembly text format (WAT),
// restricted to the construct set §4.5 defines: module-level entries,
// structured control flow with indentation, symbolic naming by stable
// index, and canonical float/NaN textualization.
package disasm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	werrors "github.com/wasmtools/wevent/errors"
	"github.com/wasmtools/wevent/event"
	"github.com/wasmtools/wevent/internal/floatfmt"
	"github.com/wasmtools/wevent/internal/opcode"
	"github.com/wasmtools/wevent/internal/wlog"
)

// Option configures a Disassembler.
type Option func(*Disassembler)

// WithLogger wires a logger for diagnostic tracing. Nil (the default)
// disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(d *Disassembler) { d.log = wlog.New(l) }
}

// WithIndentUnit overrides the per-level indentation string used inside
// function bodies and init expressions. The default is two spaces.
func WithIndentUnit(unit string) Option {
	return func(d *Disassembler) { d.indentUnit = unit }
}

// Disassembler is a single-use, single-threaded streaming WAT printer.
type Disassembler struct {
	buf strings.Builder
	log wlog.Sugar

	indentUnit string

	types     []event.FunctionType
	funcTypes []uint32

	funcIndex   uint32
	importCount uint32
	globalCount uint32
	tableCount  uint32
	typeCount   uint32

	// per-body state, valid only while inside a function body or init
	// expression.
	bodyBase    string // "    " for function bodies, "      " for init expressions
	inInitExpr  bool   // true while printing an init expression, not a function body
	paramCount  uint32
	indentLevel uint32

	result string
}

// New returns a ready Disassembler with an empty buffer; the "(module"
// line is written when the BeginWasm event arrives.
func New(opts ...Option) *Disassembler {
	d := &Disassembler{
		indentUnit: "  ",
		log:        wlog.New(nil),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// String returns the finalized text produced by the last EndWasm event,
// or "" if the stream has not completed.
func (d *Disassembler) String() string { return d.result }

// FuncName returns the symbolic name of the function at index idx in the
// module's function index space (imported functions first).
func (d *Disassembler) FuncName(idx uint32) string { return fmt.Sprintf("$func%d", idx) }

// GlobalName returns the symbolic name of the global at index idx.
func (d *Disassembler) GlobalName(idx uint32) string { return fmt.Sprintf("$global%d", idx) }

// TableName returns the symbolic name of the table at index idx.
func (d *Disassembler) TableName(idx uint32) string { return fmt.Sprintf("$table%d", idx) }

// TypeName returns the symbolic name of the type at index idx.
func (d *Disassembler) TypeName(idx uint32) string { return fmt.Sprintf("$type%d", idx) }

// VarName returns the symbolic name of the local variable slot idx.
func (d *Disassembler) VarName(idx uint32) string { return fmt.Sprintf("$var%d", idx) }

// Write drives the Disassembler to completion (or first error) from r.
func (d *Disassembler) Write(r event.Reader) error {
	for r.Read() {
		if r.State() == event.Error {
			return werrors.ParserError(werrors.PhaseDisassemble, r.Err())
		}
		if err := d.HandleEvent(event.Event{Kind: r.State(), Payload: r.Result()}); err != nil {
			return err
		}
	}
	return nil
}

// HandleEvent applies a single event to the printer.
func (d *Disassembler) HandleEvent(ev event.Event) error {
	d.log.Debugf("disasm: %s", ev.Kind)
	switch ev.Kind {
	case event.BeginWasm:
		d.buf.WriteString("(module\n")
	case event.EndWasm:
		d.buf.WriteString(")\n")
		d.result = d.buf.String()
	case event.BeginSection:
		// Section boundaries carry no printed text of their own; entries
		// inside the section print themselves.
	case event.EndSection:
	case event.TypeSectionEntry:
		d.printType(ev.Payload.(event.FunctionType))
	case event.ImportSectionEntry:
		d.printImport(ev.Payload.(event.ImportEntry))
	case event.FunctionSectionEntry:
		d.funcTypes = append(d.funcTypes, ev.Payload.(event.FunctionEntry).TypeIndex)
	case event.TableSectionEntry:
		d.printTable(ev.Payload.(event.TableType))
	case event.MemorySectionEntry:
		d.printMemory(ev.Payload.(event.MemoryType))
	case event.ExportSectionEntry:
		d.printExport(ev.Payload.(event.ExportEntry))
	case event.BeginGlobalSectionEntry:
		d.printGlobalOpen(ev.Payload.(event.GlobalEntry).Type)
	case event.EndGlobalSectionEntry:
		d.buf.WriteString("  )\n")
		d.globalCount++
	case event.BeginFunctionBody:
		d.printFunctionOpen(ev.Payload.(event.FunctionInformation))
	case event.CodeOperator:
		return d.printOperator(ev.Payload.(event.OperatorInformation))
	case event.EndFunctionBody:
		if d.indentLevel != 0 {
			return werrors.StateViolation(werrors.PhaseDisassemble, ev.Kind.String(), "unbalanced indent")
		}
		d.buf.WriteString("  )\n")
		d.funcIndex++
	case event.BeginDataSectionEntry:
		d.buf.WriteString("  (data\n")
	case event.DataSectionEntryBody:
		d.buf.WriteString("    \"")
		d.buf.WriteString(escapeBytes(ev.Payload.(event.DataSegmentBody).Data))
		d.buf.WriteString("\"\n")
	case event.EndDataSectionEntry:
		d.buf.WriteString("  )\n")
	case event.BeginElementSectionEntry:
		d.buf.WriteString("  (elem\n")
	case event.ElementSectionEntryBody:
		d.printElementBody(ev.Payload.(event.ElementSegmentBody))
	case event.EndElementSectionEntry:
		d.buf.WriteString("  )\n")
	case event.BeginInitExpressionBody:
		d.buf.WriteString("    (\n")
		d.bodyBase = "      "
		d.indentLevel = 0
		d.inInitExpr = true
	case event.InitExpressionOperator:
		return d.printOperator(ev.Payload.(event.OperatorInformation))
	case event.EndInitExpressionBody:
		d.buf.WriteString("    )\n")
		d.inInitExpr = false
	case event.StartSectionEntry:
		d.buf.WriteString(fmt.Sprintf("  (start %s)\n", d.FuncName(ev.Payload.(event.FunctionEntry).TypeIndex)))
	case event.BeginCustomSectionEntry, event.CustomSectionPayload, event.EndCustomSectionEntry:
		// Custom section payloads are opaque; the text format has no
		// standard rendering for them, so they are silently skipped.
	default:
		return werrors.UnexpectedReaderState(ev.Kind.String())
	}
	return nil
}

func (d *Disassembler) opPrefix() string {
	return d.bodyBase + strings.Repeat(d.indentUnit, int(d.indentLevel))
}

func valueTypeName(vt event.ValueType) string {
	switch vt {
	case event.ValueI32:
		return "i32"
	case event.ValueI64:
		return "i64"
	case event.ValueF32:
		return "f32"
	case event.ValueF64:
		return "f64"
	case event.ValueAnyFunc:
		return "anyfunc"
	case event.ValueFunc:
		return "func"
	default:
		return "unknown"
	}
}

func compactClause(kw string, types []event.ValueType) string {
	if len(types) == 0 {
		return ""
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = valueTypeName(t)
	}
	return fmt.Sprintf("(%s %s)", kw, strings.Join(names, " "))
}

func signature(ft event.FunctionType) string {
	return compactClause("param", ft.Params) + compactClause("result", ft.Returns)
}

func namedSignature(ft event.FunctionType, nameFor func(uint32) string) string {
	var clauses []string
	for i, t := range ft.Params {
		clauses = append(clauses, fmt.Sprintf("(param %s %s)", nameFor(uint32(i)), valueTypeName(t)))
	}
	if r := compactClause("result", ft.Returns); r != "" {
		clauses = append(clauses, r)
	}
	if len(clauses) == 0 {
		return ""
	}
	return " " + strings.Join(clauses, " ")
}

func limitsString(l event.ResizableLimits) string {
	if l.Maximum != nil {
		return fmt.Sprintf("%d %d", l.Initial, *l.Maximum)
	}
	return fmt.Sprintf("%d", l.Initial)
}

func (d *Disassembler) printType(ft event.FunctionType) {
	d.buf.WriteString(fmt.Sprintf("  (type %s (func%s))\n", d.TypeName(d.typeCount), signature(ft)))
	d.types = append(d.types, ft)
	d.typeCount++
}

func (d *Disassembler) printImport(imp event.ImportEntry) {
	mod, field := string(imp.Module), string(imp.Field)
	switch imp.Kind {
	case event.KindFunction:
		ft := event.FunctionType{}
		if int(imp.FuncTypeIndex) < len(d.types) {
			ft = d.types[imp.FuncTypeIndex]
		}
		d.buf.WriteString(fmt.Sprintf("  (import %s %s %s (func%s))\n",
			d.FuncName(d.importCount), quote(mod), quote(field), signature(ft)))
		d.importCount++
	case event.KindTable:
		d.buf.WriteString(fmt.Sprintf("  (import %s %s (table %s %s %s))\n",
			quote(mod), quote(field), d.TableName(d.tableCount), limitsString(imp.Table.Limits), valueTypeName(imp.Table.ElementType)))
		d.tableCount++
	case event.KindMemory:
		d.buf.WriteString(fmt.Sprintf("  (import %s %s (memory %s))\n", quote(mod), quote(field), limitsString(imp.Memory.Limits)))
	case event.KindGlobal:
		d.buf.WriteString(fmt.Sprintf("  (import %s %s (global %s %s))\n",
			quote(mod), quote(field), d.GlobalName(d.globalCount), globalTypeString(imp.Global)))
		d.globalCount++
	}
}

func globalTypeString(g event.GlobalType) string {
	if g.Mutable {
		return fmt.Sprintf("(mut %s)", valueTypeName(g.ContentType))
	}
	return valueTypeName(g.ContentType)
}

func (d *Disassembler) printTable(t event.TableType) {
	d.buf.WriteString(fmt.Sprintf("  (table %s %s %s)\n", d.TableName(d.tableCount), limitsString(t.Limits), valueTypeName(t.ElementType)))
	d.tableCount++
}

func (d *Disassembler) printMemory(m event.MemoryType) {
	if m.Limits.Maximum != nil {
		d.buf.WriteString(fmt.Sprintf("  (memory %d %d)\n", m.Limits.Initial, *m.Limits.Maximum))
		return
	}
	d.buf.WriteString(fmt.Sprintf("  (memory %d)\n", m.Limits.Initial))
}

func (d *Disassembler) printExport(exp event.ExportEntry) {
	var target string
	switch exp.Kind {
	case event.KindFunction:
		target = d.FuncName(exp.Index)
	case event.KindTable:
		target = fmt.Sprintf("(table %s)", d.TableName(exp.Index))
	case event.KindMemory:
		target = "memory"
	case event.KindGlobal:
		target = fmt.Sprintf("(global %s)", d.GlobalName(exp.Index))
	}
	d.buf.WriteString(fmt.Sprintf("  (export %s %s)\n", quote(string(exp.Field)), target))
}

func (d *Disassembler) printGlobalOpen(gt event.GlobalType) {
	d.buf.WriteString(fmt.Sprintf("  (global %s %s\n", d.GlobalName(d.globalCount), globalTypeString(gt)))
}

func (d *Disassembler) printElementBody(body event.ElementSegmentBody) {
	for _, fn := range body.Functions {
		d.buf.WriteString(fmt.Sprintf("   %s\n", d.FuncName(fn)))
	}
}

func (d *Disassembler) printFunctionOpen(info event.FunctionInformation) {
	declaredIdx := d.funcIndex
	typeIdx := uint32(0)
	if int(declaredIdx) < len(d.funcTypes) {
		typeIdx = d.funcTypes[declaredIdx]
	}
	ft := event.FunctionType{}
	if int(typeIdx) < len(d.types) {
		ft = d.types[typeIdx]
	}

	d.paramCount = uint32(len(ft.Params))
	d.buf.WriteString(fmt.Sprintf("  (func %s%s\n", d.FuncName(d.importCount+declaredIdx), namedSignature(ft, d.VarName)))

	local := d.paramCount
	for _, entry := range info.Locals {
		for i := uint32(0); i < entry.Count; i++ {
			d.buf.WriteString(fmt.Sprintf("    (local %s %s)\n", d.VarName(local), valueTypeName(entry.Type)))
			local++
		}
	}

	d.bodyBase = "    "
	d.indentLevel = 0
	d.inInitExpr = false
}

func quote(s string) string {
	return "\"" + escapeBytes([]byte(s)) + "\""
}

func escapeBytes(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		if c < 0x20 || c >= 0x7F || c == '"' || c == '\\' {
			fmt.Fprintf(&b, "\\%02x", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// memoryOperandString renders a load/store's {flags, offset} immediate,
// eliding the alignment when it equals the opcode's natural width.
func memoryOperandString(code byte, mem *event.MemoryImmediate) string {
	if mem == nil {
		return ""
	}
	info, _ := opcode.Lookup(code)
	def := info.NaturalAlign
	switch {
	case mem.Flags == def:
		return fmt.Sprintf("offset=%d", mem.Offset)
	case mem.Offset == 0:
		return fmt.Sprintf("align=%d", uint32(1)<<mem.Flags)
	default:
		return fmt.Sprintf("offset=%d align=%d", mem.Offset, uint32(1)<<mem.Flags)
	}
}

func (d *Disassembler) printOperator(info event.OperatorInformation) error {
	const (
		opBlock = 0x02
		opLoop  = 0x03
		opIf    = 0x04
		opElse  = 0x05
		opEnd   = 0x0B
	)

	if (info.Code == opEnd || info.Code == opElse) && d.indentLevel > 0 {
		d.indentLevel--
	} else if info.Code == opEnd && d.indentLevel == 0 && !d.inInitExpr {
		return nil // implicit function-body terminator
	}

	line := d.opPrefix()
	line += opcode.Mnemonic(info.Code)

	if info.BlockType != nil && *info.BlockType != event.ValueEmptyBlock {
		line += " " + valueTypeName(*info.BlockType)
	}
	if info.LocalIndex != nil {
		line += " " + d.VarName(*info.LocalIndex)
	}
	if info.FuncIndex != nil {
		line += " " + d.FuncName(*info.FuncIndex)
	}
	if info.TypeIndex != nil {
		line += " " + d.TypeName(*info.TypeIndex)
	}
	if info.I32 != nil {
		line += fmt.Sprintf(" %d", *info.I32)
	}
	if info.I64 != nil {
		line += fmt.Sprintf(" %d", int64LE(*info.I64))
	}
	if info.F32 != nil {
		line += " " + floatfmt.Float32(*info.F32)
	}
	if info.F64 != nil {
		line += " " + floatfmt.Float64(*info.F64)
	}
	if mem := memoryOperandString(info.Code, info.Memory); mem != "" {
		line += " " + mem
	}
	if info.BrDepth != nil {
		line += fmt.Sprintf(" %d", *info.BrDepth)
	}
	for _, t := range info.BrTable {
		line += fmt.Sprintf(" %d", t)
	}
	if info.GlobalIndex != nil {
		line += " " + d.GlobalName(*info.GlobalIndex)
	}

	d.buf.WriteString(line + "\n")

	if info.Code == opBlock || info.Code == opLoop || info.Code == opIf || info.Code == opElse {
		d.indentLevel++
	}
	return nil
}

func int64LE(v event.Int64) int64 {
	var u uint64
	for i := 7; i >= 0; i-- {
		u = u<<8 | uint64(v[i])
	}
	return int64(u)
}
