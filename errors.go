package qio

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Defect represents a synchronous exception thrown by a user-supplied
// function inside Map, Chain, Catch, a Suspend thunk, or an Async
// register callback. It
// is captured at the point of the panic and converted
// into a typed failure on the effect's error channel, so it can be
// recovered with Catch like any other typed failure.
//
// The capture-and-convert shape — recover, keep the panic value and a
// stack snapshot, surface as a typed error instead of propagating the
// panic — is grounded on the paniccatcher.TryCatch/panicvalue pattern in
// the async scheduler example, adapted from "rethrow across goroutines"
// to "convert to Reject".
type Defect struct {
	// Value is whatever was passed to panic().
	Value any
	// Phase names where the panic originated: "map", "chain", "catch",
	// "suspend", or "async-register".
	Phase string
	// Stack is a snapshot captured at the moment of recovery.
	Stack []byte
}

func (d *Defect) Error() string {
	return fmt.Sprintf("qio: defect in %s: %v", d.Phase, d.Value)
}

// Unwrap exposes the panic value when it is itself an error, so
// errors.Is/errors.As can see through a Defect to the original cause.
func (d *Defect) Unwrap() error {
	if err, ok := d.Value.(error); ok {
		return err
	}
	return nil
}

func newDefect(phase string, v any) *Defect {
	return &Defect{Value: v, Phase: phase, Stack: debug.Stack()}
}

// tryCatch runs f, converting any panic into a *Defect tagged with phase.
// recovered is nil on ordinary return.
func tryCatch(phase string, f func()) (recovered *Defect) {
	defer func() {
		if v := recover(); v != nil {
			recovered = newDefect(phase, v)
		}
	}()
	f()
	return nil
}

// defectConverterFor builds the func(*Defect) (any, bool) a fiber uses
// to turn a recovered panic into a value of its own error type E,
// preferring override (a Runtime's WithDefectConverter, already boxed
// as func(*Defect) any) when set, and otherwise falling back to the
// automatic conversion that only succeeds when E is wide enough to hold
// a *Defect directly — E is error, or E is any.
func defectConverterFor[E any](override func(*Defect) any) func(*Defect) (any, bool) {
	return func(d *Defect) (any, bool) {
		if override != nil {
			return override(d), true
		}
		ev, ok := any(d).(E)
		return ev, ok
	}
}

// ErrPending is returned (wrapped in a panic) by UnsafeExecuteSync when the
// virtual scheduler's queue drains to empty while the fiber under test is
// still outstanding: a programmer-misuse condition, not a typed failure.
var ErrPending = errors.New("qio: effect is still pending after the scheduler queue drained")
