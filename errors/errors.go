// Package errors provides the structured error type shared by the emitter
// and disassembler.
package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which sink raised the error.
type Phase string

const (
	PhaseEmit        Phase = "emit"
	PhaseDisassemble Phase = "disassemble"
)

// Kind categorizes the error, per spec.md §7.
type Kind string

const (
	KindStateViolation        Kind = "state_violation"
	KindMissingEnd            Kind = "missing_end_operator"
	KindUnknownImportKind     Kind = "unknown_import_kind"
	KindUnknownExportKind     Kind = "unknown_export_kind"
	KindUnknownSectionID      Kind = "unknown_section_id"
	KindUnexpectedReaderState Kind = "unexpected_reader_state"
	KindOverflow              Kind = "overflow"
	KindParserError           Kind = "parser_error"
)

// Error is the structured error type used throughout this module.
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	Detail  string
	State   string
	Wanted  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.State != "" {
		b.WriteString(": state=")
		b.WriteString(e.State)
		if e.Wanted != "" {
			b.WriteString(" expected=")
			b.WriteString(e.Wanted)
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error's phase and kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

func (b *Builder) State(s string) *Builder {
	b.err.State = s
	return b
}

func (b *Builder) Wanted(s string) *Builder {
	b.err.Wanted = s
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}

// StateViolation reports an event that is not legal in the current FSM state.
func StateViolation(phase Phase, event, state string) *Error {
	return New(phase, KindStateViolation).State(state).Detail("unexpected event %q", event).Build()
}

// MissingEnd reports EndFunctionBody/EndInitExpression received before an `end` operator.
func MissingEnd(phase Phase, where string) *Error {
	return New(phase, KindMissingEnd).Detail("%s closed without a preceding end operator", where).Build()
}

// UnknownImportKind reports an import descriptor kind byte outside the defined range.
func UnknownImportKind(phase Phase, kind byte) *Error {
	return New(phase, KindUnknownImportKind).Detail("kind byte 0x%02x", kind).Build()
}

// UnknownExportKind reports an export descriptor kind byte outside the defined range.
func UnknownExportKind(phase Phase, kind byte) *Error {
	return New(phase, KindUnknownExportKind).Detail("kind byte 0x%02x", kind).Build()
}

// UnknownSectionID reports a section id this sink does not handle.
func UnknownSectionID(phase Phase, id byte) *Error {
	return New(phase, KindUnknownSectionID).Detail("section id %d", id).Build()
}

// UnexpectedReaderState reports a reader state kind the disassembler does not recognize.
func UnexpectedReaderState(state string) *Error {
	return New(PhaseDisassemble, KindUnexpectedReaderState).Detail("reader state %q", state).Build()
}

// Overflow reports a value too large for a fixed-width patchable slot.
func Overflow(phase Phase, value uint64) *Error {
	return New(phase, KindOverflow).Detail("value %d exceeds u32 range for a patchable slot", value).Build()
}

// SectionOverflow reports a section-level patchable slot (its size or its
// entry count) too large for its fixed-width slot, naming the section id.
func SectionOverflow(phase Phase, id byte, value uint64) *Error {
	return New(phase, KindOverflow).Detail("section id %d: value %d exceeds u32 range for a patchable slot", id, value).Build()
}

// ParserError wraps the reader's own reported failure, per spec.md §7 (surfaced unchanged).
func ParserError(phase Phase, cause error) *Error {
	return New(phase, KindParserError).Cause(cause).Detail("reader reported an error").Build()
}
