// Package emitter implements a streaming binary writer that consumes an
// event.Reader and reproduces the canonical WebAssembly binary module
// format: magic header, section framing, LEB128 integers, and per-section
// entry encodings.
//
// The writer is a finite state machine: at every event boundary, state
// alone determines which events are legal. Section and function-body
// lengths are only known after their payload is written, so the emitter
// reserves a fixed-width patchable LEB128 slot at the point it would
// otherwise need the length, and back-patches it once the payload ends.
package emitter

import (
	"go.uber.org/zap"

	werrors "github.com/wasmtools/wevent/errors"
	"github.com/wasmtools/wevent/event"
	"github.com/wasmtools/wevent/internal/leb128"
	"github.com/wasmtools/wevent/internal/opcode"
	"github.com/wasmtools/wevent/internal/wlog"
)

// State is the emitter's finite-state-machine tag.
type State int

const (
	Initial State = iota
	ErrorState
	Wasm
	TypeSection
	ImportSection
	FunctionSection
	TableSection
	MemorySection
	GlobalSection
	GlobalEntry
	ExportSection
	StartSection
	ElementSection
	ElementEntry
	ElementEntryBody
	CodeSection
	DataSection
	FunctionBody
	DataSectionEntry
	DataSectionEntryBody
	DataSectionEntryEnd
	InitExpression
	CustomSection
)

var stateNames = map[State]string{
	Initial:              "Initial",
	ErrorState:           "Error",
	Wasm:                 "Wasm",
	TypeSection:          "TypeSection",
	ImportSection:        "ImportSection",
	FunctionSection:      "FunctionSection",
	TableSection:         "TableSection",
	MemorySection:        "MemorySection",
	GlobalSection:        "GlobalSection",
	GlobalEntry:          "GlobalEntry",
	ExportSection:        "ExportSection",
	StartSection:         "StartSection",
	ElementSection:       "ElementSection",
	ElementEntry:         "ElementEntry",
	ElementEntryBody:     "ElementEntryBody",
	CodeSection:          "CodeSection",
	DataSection:          "DataSection",
	FunctionBody:         "FunctionBody",
	DataSectionEntry:     "DataSectionEntry",
	DataSectionEntryBody: "DataSectionEntryBody",
	DataSectionEntryEnd:  "DataSectionEntryEnd",
	InitExpression:       "InitExpression",
	CustomSection:        "CustomSection",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "Unknown"
}

// CustomSectionPolicy controls how BeginSection(Custom) is handled.
type CustomSectionPolicy int

const (
	// CustomSectionAccept emits the section name and then passes through
	// whatever bytes a CustomSectionPayload event carries, with no
	// entries-count slot (custom sections have no entry framing).
	CustomSectionAccept CustomSectionPolicy = iota
	// CustomSectionReject fails BeginSection(Custom) with
	// UnknownSectionId, matching the legacy behavior this library
	// generalizes from.
	CustomSectionReject
)

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger wires a logger for FSM transition tracing. Nil (the
// default) disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(e *Emitter) { e.log = wlog.New(l) }
}

// WithCustomSectionPolicy sets how Custom sections are treated. The
// default is CustomSectionAccept.
func WithCustomSectionPolicy(p CustomSectionPolicy) Option {
	return func(e *Emitter) { e.customSectionPolicy = p }
}

// Emitter is a single-use, single-threaded streaming Wasm binary writer.
// An event received outside the states legal for it poisons the
// instance; callers must discard it on error.
type Emitter struct {
	buf   *leb128.Writer
	state State
	log   wlog.Sugar

	customSectionPolicy CustomSectionPolicy

	sectionID                event.SectionID
	sectionStart             int
	sectionSizeBytes         int
	sectionEntriesCount      uint32
	sectionEntriesCountBytes int

	bodyStart     int
	bodySizeBytes int
	endWritten    bool

	initExpressionAfterState State

	data []byte
}

// New returns a ready Emitter in its Initial state.
func New(opts ...Option) *Emitter {
	e := &Emitter{
		buf:   leb128.NewWriter(),
		state: Initial,
		log:   wlog.New(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bytes returns the finalized module produced by the last EndWasm event,
// or nil if the stream has not completed.
func (e *Emitter) Bytes() []byte { return e.data }

// Write drives the Emitter to completion (or first error) from r.
func (e *Emitter) Write(r event.Reader) error {
	for r.Read() {
		if r.State() == event.Error {
			return werrors.ParserError(werrors.PhaseEmit, r.Err())
		}
		if err := e.HandleEvent(event.Event{Kind: r.State(), Payload: r.Result()}); err != nil {
			return err
		}
	}
	return nil
}

// HandleEvent applies a single event to the FSM.
func (e *Emitter) HandleEvent(ev event.Event) error {
	from := e.state
	err := e.dispatch(ev)
	if err != nil {
		e.state = ErrorState
		return err
	}
	e.log.Transition(from.String(), ev.Kind.String(), e.state.String())
	return nil
}

func (e *Emitter) dispatch(ev event.Event) error {
	switch e.state {
	case Initial:
		if ev.Kind == event.BeginWasm {
			return e.beginWasm()
		}
	case Wasm:
		switch ev.Kind {
		case event.BeginSection:
			info, ok := ev.Payload.(event.SectionInfo)
			if !ok {
				return e.unexpected(ev)
			}
			return e.beginSection(info)
		case event.EndWasm:
			return e.endWasm()
		}
	case TypeSection:
		if ev.Kind == event.TypeSectionEntry {
			return e.withEntry(func() error { return e.writeFunctionType(ev.Payload.(event.FunctionType)) })
		}
		if ev.Kind == event.EndSection {
			return e.endSection()
		}
	case ImportSection:
		if ev.Kind == event.ImportSectionEntry {
			return e.withEntry(func() error { return e.writeImportEntry(ev.Payload.(event.ImportEntry)) })
		}
		if ev.Kind == event.EndSection {
			return e.endSection()
		}
	case FunctionSection:
		if ev.Kind == event.FunctionSectionEntry {
			return e.withEntry(func() error {
				e.buf.WriteVarUint(uint64(ev.Payload.(event.FunctionEntry).TypeIndex))
				return nil
			})
		}
		if ev.Kind == event.EndSection {
			return e.endSection()
		}
	case TableSection:
		if ev.Kind == event.TableSectionEntry {
			return e.withEntry(func() error { return e.writeTableType(ev.Payload.(event.TableType)) })
		}
		if ev.Kind == event.EndSection {
			return e.endSection()
		}
	case MemorySection:
		if ev.Kind == event.MemorySectionEntry {
			return e.withEntry(func() error { return e.writeMemoryType(ev.Payload.(event.MemoryType)) })
		}
		if ev.Kind == event.EndSection {
			return e.endSection()
		}
	case GlobalSection:
		if ev.Kind == event.BeginGlobalSectionEntry {
			e.sectionEntriesCount++
			e.writeGlobalType(ev.Payload.(event.GlobalEntry).Type)
			e.state = GlobalEntry
			return nil
		}
		if ev.Kind == event.EndSection {
			return e.endSection()
		}
	case GlobalEntry:
		if ev.Kind == event.BeginInitExpressionBody {
			e.initExpressionAfterState = GlobalEntry
			e.endWritten = false
			e.state = InitExpression
			return nil
		}
		if ev.Kind == event.EndGlobalSectionEntry {
			e.state = GlobalSection
			return nil
		}
	case ExportSection:
		if ev.Kind == event.ExportSectionEntry {
			return e.withEntry(func() error { return e.writeExportEntry(ev.Payload.(event.ExportEntry)) })
		}
		if ev.Kind == event.EndSection {
			return e.endSection()
		}
	case StartSection:
		if ev.Kind == event.StartSectionEntry {
			e.buf.WriteVarUint(uint64(ev.Payload.(event.FunctionEntry).TypeIndex))
			return nil
		}
		if ev.Kind == event.EndSection {
			return e.endSectionNoCount()
		}
	case ElementSection:
		if ev.Kind == event.BeginElementSectionEntry {
			e.sectionEntriesCount++
			e.buf.WriteVarUint(uint64(ev.Payload.(event.ElementSegment).Index))
			e.state = ElementEntry
			return nil
		}
		if ev.Kind == event.EndSection {
			return e.endSection()
		}
	case ElementEntry:
		if ev.Kind == event.BeginInitExpressionBody {
			e.initExpressionAfterState = ElementEntryBody
			e.endWritten = false
			e.state = InitExpression
			return nil
		}
	case ElementEntryBody:
		if ev.Kind == event.ElementSectionEntryBody {
			fns := ev.Payload.(event.ElementSegmentBody).Functions
			e.buf.WriteVarUint(uint64(len(fns)))
			for _, f := range fns {
				e.buf.WriteVarUint(uint64(f))
			}
			return nil
		}
		if ev.Kind == event.EndElementSectionEntry {
			e.state = ElementSection
			return nil
		}
	case CodeSection:
		if ev.Kind == event.BeginFunctionBody {
			return e.beginFunctionBody(ev.Payload.(event.FunctionInformation))
		}
		if ev.Kind == event.EndSection {
			return e.endSection()
		}
	case FunctionBody:
		switch ev.Kind {
		case event.CodeOperator:
			return e.writeOperator(ev.Payload.(event.OperatorInformation))
		case event.EndFunctionBody:
			return e.endFunctionBody()
		}
	case DataSection:
		if ev.Kind == event.BeginDataSectionEntry {
			e.sectionEntriesCount++
			e.buf.WriteVarUint(uint64(ev.Payload.(event.DataSegment).Index))
			e.state = DataSectionEntry
			return nil
		}
		if ev.Kind == event.EndSection {
			return e.endSection()
		}
	case DataSectionEntry:
		if ev.Kind == event.BeginInitExpressionBody {
			e.initExpressionAfterState = DataSectionEntryBody
			e.endWritten = false
			e.state = InitExpression
			return nil
		}
	case InitExpression:
		switch ev.Kind {
		case event.InitExpressionOperator:
			return e.writeOperator(ev.Payload.(event.OperatorInformation))
		case event.EndInitExpressionBody:
			if !e.endWritten {
				return werrors.MissingEnd(werrors.PhaseEmit, "init expression")
			}
			e.state = e.initExpressionAfterState
			return nil
		}
	case DataSectionEntryBody:
		if ev.Kind == event.DataSectionEntryBody {
			data := ev.Payload.(event.DataSegmentBody).Data
			e.buf.WriteVarUint(uint64(len(data)))
			e.buf.WriteBytes(data)
			e.state = DataSectionEntryEnd
			return nil
		}
	case DataSectionEntryEnd:
		if ev.Kind == event.EndDataSectionEntry {
			e.state = DataSection
			return nil
		}
	case CustomSection:
		switch ev.Kind {
		case event.BeginCustomSectionEntry:
			return nil
		case event.CustomSectionPayload:
			e.buf.WriteBytes(ev.Payload.(event.CustomSection).Data)
			return nil
		case event.EndCustomSectionEntry:
			return nil
		case event.EndSection:
			return e.endSectionNoCount()
		}
	}
	return e.unexpected(ev)
}

func (e *Emitter) unexpected(ev event.Event) error {
	return werrors.StateViolation(werrors.PhaseEmit, ev.Kind.String(), e.state.String())
}

func (e *Emitter) beginWasm() error {
	e.buf.WriteBytes([]byte{0x00, 0x61, 0x73, 0x6d})
	e.buf.WriteBytes([]byte{0x01, 0x00, 0x00, 0x00})
	e.state = Wasm
	return nil
}

func (e *Emitter) beginSection(info event.SectionInfo) error {
	if info.ID == event.SectionCustom && e.customSectionPolicy == CustomSectionReject {
		return werrors.UnknownSectionID(werrors.PhaseEmit, byte(info.ID))
	}
	if info.ID != event.SectionCustom && info.ID != event.SectionStart && sectionState(info.ID) == ErrorState {
		return werrors.UnknownSectionID(werrors.PhaseEmit, byte(info.ID))
	}

	e.sectionID = info.ID
	e.buf.Byte(byte(info.ID))
	e.sectionSizeBytes = e.buf.WritePatchableVarUint32()
	e.sectionStart = e.buf.Len()

	switch info.ID {
	case event.SectionCustom:
		e.buf.WriteVarUint(uint64(len(info.Name)))
		e.buf.WriteBytes(info.Name)
		e.state = CustomSection
	case event.SectionStart:
		e.state = StartSection
	default:
		e.sectionEntriesCount = 0
		e.sectionEntriesCountBytes = e.buf.WritePatchableVarUint32()
		e.state = sectionState(info.ID)
	}
	return nil
}

func sectionState(id event.SectionID) State {
	switch id {
	case event.SectionType:
		return TypeSection
	case event.SectionImport:
		return ImportSection
	case event.SectionFunction:
		return FunctionSection
	case event.SectionTable:
		return TableSection
	case event.SectionMemory:
		return MemorySection
	case event.SectionGlobal:
		return GlobalSection
	case event.SectionExport:
		return ExportSection
	case event.SectionElement:
		return ElementSection
	case event.SectionCode:
		return CodeSection
	case event.SectionData:
		return DataSection
	default:
		return ErrorState
	}
}

func (e *Emitter) withEntry(write func() error) error {
	e.sectionEntriesCount++
	return write()
}

func (e *Emitter) endSection() error {
	if err := leb128.PatchVarUint32(e.buf.Bytes(), e.sectionEntriesCountBytes, uint64(e.sectionEntriesCount)); err != nil {
		return werrors.SectionOverflow(werrors.PhaseEmit, byte(e.sectionID), uint64(e.sectionEntriesCount))
	}
	return e.endSectionNoCount()
}

func (e *Emitter) endSectionNoCount() error {
	size := uint64(e.buf.Len() - e.sectionStart)
	if err := leb128.PatchVarUint32(e.buf.Bytes(), e.sectionSizeBytes, size); err != nil {
		return werrors.SectionOverflow(werrors.PhaseEmit, byte(e.sectionID), size)
	}
	e.state = Wasm
	return nil
}

func (e *Emitter) endWasm() error {
	e.data = append([]byte(nil), e.buf.Bytes()...)
	e.buf = leb128.NewWriter()
	e.state = Initial
	return nil
}

func (e *Emitter) writeLimits(l event.ResizableLimits) {
	if l.Maximum != nil {
		e.buf.WriteVarUint(1)
		e.buf.WriteVarUint(uint64(l.Initial))
		e.buf.WriteVarUint(uint64(*l.Maximum))
	} else {
		e.buf.WriteVarUint(0)
		e.buf.WriteVarUint(uint64(l.Initial))
	}
}

func (e *Emitter) writeTableType(t event.TableType) error {
	e.buf.WriteVarInt(int64(t.ElementType))
	e.writeLimits(t.Limits)
	return nil
}

func (e *Emitter) writeMemoryType(m event.MemoryType) error {
	e.writeLimits(m.Limits)
	return nil
}

func (e *Emitter) writeGlobalType(g event.GlobalType) {
	e.buf.WriteVarInt(int64(g.ContentType))
	if g.Mutable {
		e.buf.WriteVarUint(1)
	} else {
		e.buf.WriteVarUint(0)
	}
}

func (e *Emitter) writeFunctionType(ft event.FunctionType) error {
	e.buf.WriteVarInt(int64(ft.Form))
	e.buf.WriteVarUint(uint64(len(ft.Params)))
	for _, p := range ft.Params {
		e.buf.WriteVarInt(int64(p))
	}
	e.buf.WriteVarUint(uint64(len(ft.Returns)))
	for _, r := range ft.Returns {
		e.buf.WriteVarInt(int64(r))
	}
	return nil
}

func (e *Emitter) writeBytesField(b []byte) {
	e.buf.WriteVarUint(uint64(len(b)))
	e.buf.WriteBytes(b)
}

func (e *Emitter) writeImportEntry(imp event.ImportEntry) error {
	e.writeBytesField(imp.Module)
	e.writeBytesField(imp.Field)
	e.buf.Byte(byte(imp.Kind))
	switch imp.Kind {
	case event.KindFunction:
		e.buf.WriteVarUint(uint64(imp.FuncTypeIndex))
	case event.KindTable:
		return e.writeTableType(imp.Table)
	case event.KindMemory:
		return e.writeMemoryType(imp.Memory)
	case event.KindGlobal:
		e.writeGlobalType(imp.Global)
	default:
		return werrors.UnknownImportKind(werrors.PhaseEmit, byte(imp.Kind))
	}
	return nil
}

func (e *Emitter) writeExportEntry(exp event.ExportEntry) error {
	e.writeBytesField(exp.Field)
	switch exp.Kind {
	case event.KindFunction, event.KindTable, event.KindMemory, event.KindGlobal:
		e.buf.Byte(byte(exp.Kind))
	default:
		return werrors.UnknownExportKind(werrors.PhaseEmit, byte(exp.Kind))
	}
	e.buf.WriteVarUint(uint64(exp.Index))
	return nil
}

func (e *Emitter) beginFunctionBody(info event.FunctionInformation) error {
	e.sectionEntriesCount++
	e.bodySizeBytes = e.buf.WritePatchableVarUint32()
	e.bodyStart = e.buf.Len()
	e.endWritten = false

	e.buf.WriteVarUint(uint64(len(info.Locals)))
	for _, l := range info.Locals {
		e.buf.WriteVarUint(uint64(l.Count))
		e.buf.WriteVarInt(int64(l.Type))
	}
	e.state = FunctionBody
	return nil
}

func (e *Emitter) endFunctionBody() error {
	if !e.endWritten {
		return werrors.MissingEnd(werrors.PhaseEmit, "function body")
	}
	size := uint64(e.buf.Len() - e.bodyStart)
	if err := leb128.PatchVarUint32(e.buf.Bytes(), e.bodySizeBytes, size); err != nil {
		return werrors.Overflow(werrors.PhaseEmit, size)
	}
	e.state = CodeSection
	return nil
}

// endOpcode is the single-byte code for the "end" operator, the only
// opcode the FSM itself needs to recognize (to track end-operator
// discipline across function bodies and init expressions).
const endOpcode = 0x0B

func (e *Emitter) writeOperator(info event.OperatorInformation) error {
	e.buf.Byte(info.Code)
	opInfo, _ := opcode.Lookup(info.Code)
	switch opInfo.Imm {
	case opcode.ImmBlockType:
		e.buf.WriteVarInt(int64(*info.BlockType))
	case opcode.ImmBrDepth:
		e.buf.WriteVarUint(uint64(*info.BrDepth))
	case opcode.ImmBrTable:
		n := len(info.BrTable) - 1
		e.buf.WriteVarUint(uint64(n))
		for _, t := range info.BrTable {
			e.buf.WriteVarUint(uint64(t))
		}
	case opcode.ImmFuncIndex:
		e.buf.WriteVarUint(uint64(*info.FuncIndex))
	case opcode.ImmCallIndirect:
		e.buf.WriteVarUint(uint64(*info.TypeIndex))
		e.buf.WriteVarUint(0)
	case opcode.ImmLocalIndex:
		e.buf.WriteVarUint(uint64(*info.LocalIndex))
	case opcode.ImmGlobalIndex:
		e.buf.WriteVarUint(uint64(*info.GlobalIndex))
	case opcode.ImmMemoryReserved:
		e.buf.WriteVarUint(0)
	case opcode.ImmI32Const:
		e.buf.WriteVarInt(int64(*info.I32))
	case opcode.ImmI64Const:
		e.buf.WriteInt64Raw(*info.I64)
	case opcode.ImmF32Const:
		e.buf.WriteFloat32(*info.F32)
	case opcode.ImmF64Const:
		e.buf.WriteFloat64(*info.F64)
	case opcode.ImmMemory:
		mem := info.Memory
		e.buf.WriteVarUint(uint64(mem.Flags))
		e.buf.WriteVarUint(uint64(mem.Offset))
	}
	e.endWritten = info.Code == endOpcode
	return nil
}
