// Package wevent provides an event-driven emitter and disassembler for
// core WebAssembly modules.
//
// # Quick Start
//
// Both the Emitter and the Disassembler are driven by the same event
// stream: a reader that implements event.Reader, typically a streaming
// binary parser.
//
//	em := emitter.New()
//	if err := em.Write(reader); err != nil {
//	    log.Fatal(err)
//	}
//	wasmBytes := em.Bytes()
//
//	dis := disasm.New()
//	if err := dis.Write(reader); err != nil {
//	    log.Fatal(err)
//	}
//	watText := dis.String()
//
// # Packages
//
//	event              shared event vocabulary: Kind, Event, Reader, payloads
//	emitter            streaming binary writer (back-patching FSM)
//	disasm             streaming WAT pretty printer
//	internal/leb128    LEB128 codec and the patchable fixed-width slot
//	internal/opcode    per-operator immediate shape and mnemonic table
//	internal/floatfmt  canonical float/NaN text rendering
//	internal/wlog      ambient debug logger, no-op unless configured
//
// # Options
//
// Both sinks accept functional options:
//
//	em := emitter.New(emitter.WithLogger(logger))
//	dis := disasm.New(disasm.WithIndentUnit("\t"))
//
// # Single Use, Single Threaded
//
// An Emitter or Disassembler is not safe for concurrent use and is not
// reusable after an error: an event outside the states legal for it
// poisons the instance, and the caller must discard it.
//
// # Errors
//
// Failures are returned as *errors.Error, carrying a Phase (emit or
// disassemble) and a Kind describing what went wrong. Use errors.As to
// inspect a returned error's Kind.
package wevent
