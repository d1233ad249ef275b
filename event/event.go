// Package event defines the shared vocabulary the Emitter and
// Disassembler consume from an external streaming parser: a sequence of
// typed events, each carrying a decoded payload.
package event

// Kind tags a single event in the stream. It mirrors the reader-state
// tags a BinaryReader collaborator produces.
type Kind int

const (
	BeginWasm Kind = iota
	EndWasm
	BeginSection
	EndSection

	TypeSectionEntry
	ImportSectionEntry
	FunctionSectionEntry
	TableSectionEntry
	MemorySectionEntry
	ExportSectionEntry

	BeginFunctionBody
	EndFunctionBody
	CodeOperator

	BeginGlobalSectionEntry
	EndGlobalSectionEntry

	BeginDataSectionEntry
	DataSectionEntryBody
	EndDataSectionEntry

	BeginElementSectionEntry
	ElementSectionEntryBody
	EndElementSectionEntry

	BeginInitExpressionBody
	InitExpressionOperator
	EndInitExpressionBody

	StartSectionEntry

	BeginCustomSectionEntry
	CustomSectionPayload
	EndCustomSectionEntry

	Error
)

// String names a Kind for diagnostics and log fields.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

var kindNames = map[Kind]string{
	BeginWasm:                 "BeginWasm",
	EndWasm:                   "EndWasm",
	BeginSection:               "BeginSection",
	EndSection:                 "EndSection",
	TypeSectionEntry:           "TypeSectionEntry",
	ImportSectionEntry:         "ImportSectionEntry",
	FunctionSectionEntry:       "FunctionSectionEntry",
	TableSectionEntry:          "TableSectionEntry",
	MemorySectionEntry:         "MemorySectionEntry",
	ExportSectionEntry:         "ExportSectionEntry",
	BeginFunctionBody:          "BeginFunctionBody",
	EndFunctionBody:            "EndFunctionBody",
	CodeOperator:               "CodeOperator",
	BeginGlobalSectionEntry:    "BeginGlobalSectionEntry",
	EndGlobalSectionEntry:      "EndGlobalSectionEntry",
	BeginDataSectionEntry:      "BeginDataSectionEntry",
	DataSectionEntryBody:       "DataSectionEntryBody",
	EndDataSectionEntry:        "EndDataSectionEntry",
	BeginElementSectionEntry:   "BeginElementSectionEntry",
	ElementSectionEntryBody:    "ElementSectionEntryBody",
	EndElementSectionEntry:     "EndElementSectionEntry",
	BeginInitExpressionBody:    "BeginInitExpressionBody",
	InitExpressionOperator:     "InitExpressionOperator",
	EndInitExpressionBody:      "EndInitExpressionBody",
	StartSectionEntry:          "StartSectionEntry",
	BeginCustomSectionEntry:    "BeginCustomSectionEntry",
	CustomSectionPayload:       "CustomSectionPayload",
	EndCustomSectionEntry:      "EndCustomSectionEntry",
	Error:                      "Error",
}

// Event is one item in the stream: a kind tag plus its payload, typed by
// convention per kind (see the payload structs in this package). Sinks
// switch on Kind and take Payload by the type that kind implies; there is
// no dynamic downcasting contract beyond that.
type Event struct {
	Kind    Kind
	Payload any
}

// Reader is the external collaborator both sinks pull events from.
// Read advances to the next event and reports whether one is available;
// State and Result describe the event Read just produced. Err holds the
// parser's failure value once State() == Error.
type Reader interface {
	Read() bool
	State() Kind
	Result() any
	Err() error
	HasMoreBytes() bool
	SkipSection()
}
