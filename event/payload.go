package event

// SectionID identifies a top-level module section.
type SectionID byte

const (
	SectionCustom   SectionID = 0
	SectionType     SectionID = 1
	SectionImport   SectionID = 2
	SectionFunction SectionID = 3
	SectionTable    SectionID = 4
	SectionMemory   SectionID = 5
	SectionGlobal   SectionID = 6
	SectionExport   SectionID = 7
	SectionStart    SectionID = 8
	SectionElement  SectionID = 9
	SectionCode     SectionID = 10
	SectionData     SectionID = 11
)

// ExternalKind identifies what an import or export binds to.
type ExternalKind byte

const (
	KindFunction ExternalKind = 0
	KindTable    ExternalKind = 1
	KindMemory   ExternalKind = 2
	KindGlobal   ExternalKind = 3
)

// Int64 is an opaque 8-byte little-endian payload, carried bit-exact from
// the parser's i64.const decode through to re-emission.
type Int64 [8]byte

// ModuleHeader is the payload of BeginWasm.
type ModuleHeader struct {
	Magic   uint32
	Version uint32
}

// SectionInfo is the payload of BeginSection.
type SectionInfo struct {
	ID   SectionID
	Name []byte // non-empty only for SectionCustom
}

// ValueType is a signed Wasm type tag (i32 = -0x01, i64 = -0x02, f32 =
// -0x03, f64 = -0x04, anyfunc = -0x10, func = -0x20, empty block = -0x40).
type ValueType int8

const (
	ValueI32        ValueType = -0x01
	ValueI64        ValueType = -0x02
	ValueF32        ValueType = -0x03
	ValueF64        ValueType = -0x04
	ValueAnyFunc    ValueType = -0x10
	ValueFunc       ValueType = -0x20
	ValueEmptyBlock ValueType = -0x40
)

// FunctionType is the payload of TypeSectionEntry.
type FunctionType struct {
	Form    ValueType
	Params  []ValueType
	Returns []ValueType
}

// ResizableLimits describes a table's or memory's bounds.
type ResizableLimits struct {
	Initial uint32
	Maximum *uint32
}

// TableType is the payload of TableSectionEntry and an import's table form.
type TableType struct {
	ElementType ValueType
	Limits      ResizableLimits
}

// MemoryType is the payload of MemorySectionEntry and an import's memory form.
type MemoryType struct {
	Limits ResizableLimits
}

// GlobalType describes a global's value type and mutability.
type GlobalType struct {
	ContentType ValueType
	Mutable     bool
}

// ImportEntry is the payload of ImportSectionEntry. Exactly one of the
// kind-specific fields is populated, selected by Kind.
type ImportEntry struct {
	Module        []byte
	Field         []byte
	Kind          ExternalKind
	FuncTypeIndex uint32
	Table         TableType
	Memory        MemoryType
	Global        GlobalType
}

// ExportEntry is the payload of ExportSectionEntry.
type ExportEntry struct {
	Field []byte
	Kind  ExternalKind
	Index uint32
}

// FunctionEntry is the payload of FunctionSectionEntry.
type FunctionEntry struct {
	TypeIndex uint32
}

// LocalEntry is one run-length-encoded group of declared locals.
type LocalEntry struct {
	Count uint32
	Type  ValueType
}

// FunctionInformation is the payload of BeginFunctionBody.
type FunctionInformation struct {
	Locals []LocalEntry
}

// MemoryImmediate is the {flags, offset} pair carried by load/store operators.
type MemoryImmediate struct {
	Flags  uint32
	Offset uint32
}

// OperatorInformation is the payload of CodeOperator and
// InitExpressionOperator. Only the fields required by Code are non-nil;
// the operator codec (internal/opcode) determines which.
type OperatorInformation struct {
	Code byte

	BlockType *ValueType
	BrDepth   *uint32
	BrTable   []uint32 // last element is the default target
	FuncIndex *uint32
	TypeIndex *uint32
	LocalIndex  *uint32
	GlobalIndex *uint32
	Memory      *MemoryImmediate

	I32 *int32
	I64 *Int64
	F32 *float32
	F64 *float64
}

// GlobalEntry is the payload of BeginGlobalSectionEntry.
type GlobalEntry struct {
	Type GlobalType
}

// DataSegment is the payload of BeginDataSectionEntry.
type DataSegment struct {
	Index uint32
}

// DataSegmentBody is the payload of DataSectionEntryBody.
type DataSegmentBody struct {
	Data []byte
}

// ElementSegment is the payload of BeginElementSectionEntry.
type ElementSegment struct {
	Index uint32 // table index
}

// ElementSegmentBody is the payload of ElementSectionEntryBody.
type ElementSegmentBody struct {
	Functions []uint32
}

// CustomSection is the payload of CustomSectionPayload.
type CustomSection struct {
	Data []byte
}
