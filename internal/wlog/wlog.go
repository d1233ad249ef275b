// Package wlog provides the ambient debug logger shared by the emitter and
// disassembler. It is no-op by default; callers opt in via WithLogger.
package wlog

import "go.uber.org/zap"

// Nop is the default logger: a no-op, so neither sink pays for logging
// unless a caller wires one in.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Sugar is a small wrapper used by the FSMs to trace state transitions
// without checking a nil logger at every call site.
type Sugar struct {
	s *zap.SugaredLogger
}

// New wraps a *zap.Logger (or nil, treated as no-op) for Debugf-style calls.
func New(l *zap.Logger) Sugar {
	if l == nil {
		l = Nop()
	}
	return Sugar{s: l.Sugar()}
}

// Transition logs a state-machine transition at debug level.
func (s Sugar) Transition(from, event, to string) {
	s.s.Debugw("state transition", "from", from, "event", event, "to", to)
}

// Debugf logs a free-form debug message.
func (s Sugar) Debugf(format string, args ...any) {
	s.s.Debugf(format, args...)
}
