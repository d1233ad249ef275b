// Package eventtest provides a hand-rolled fake event.Reader for tests in
// the emitter and disasm packages, so each can drive a known event
// sequence without depending on a real streaming parser.
package eventtest

import "github.com/wasmtools/wevent/event"

// Fake replays a fixed slice of events.
type Fake struct {
	events []event.Event
	pos    int
	err    error
}

// NewFake returns a Fake that replays events in order.
func NewFake(events []event.Event) *Fake {
	return &Fake{events: events, pos: -1}
}

func (f *Fake) Read() bool {
	if f.pos+1 >= len(f.events) {
		return false
	}
	f.pos++
	if ev := f.events[f.pos]; ev.Kind == event.Error {
		if err, ok := ev.Payload.(error); ok {
			f.err = err
		}
	}
	return true
}

func (f *Fake) State() event.Kind {
	if f.pos < 0 || f.pos >= len(f.events) {
		return event.Error
	}
	return f.events[f.pos].Kind
}

func (f *Fake) Result() any {
	if f.pos < 0 || f.pos >= len(f.events) {
		return nil
	}
	return f.events[f.pos].Payload
}

func (f *Fake) Err() error { return f.err }

func (f *Fake) HasMoreBytes() bool { return f.pos+1 < len(f.events) }

func (f *Fake) SkipSection() {
	for f.pos+1 < len(f.events) && f.events[f.pos+1].Kind != event.EndSection {
		f.pos++
	}
}
