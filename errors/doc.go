// Package errors provides the structured error type shared by the emitter
// and disassembler packages.
//
// Errors are categorized by Phase (which sink raised it) and Kind (the
// error category from spec.md §7). Use the Builder for ad hoc construction:
//
//	err := errors.New(errors.PhaseEmit, errors.KindStateViolation).
//		State("CodeSection").
//		Detail("unexpected event").
//		Build()
//
// or one of the convenience constructors (StateViolation, MissingEnd, ...)
// for the common cases each FSM raises. All errors support errors.Is/As via
// the standard library's errors package.
package errors
