package qio

import (
	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// RuntimeOption configures a Runtime at construction time, the same
// functional-options shape this pack's event-loop and logging packages
// both use for their With* constructors.
type RuntimeOption func(*Runtime)

// WithTurnBound overrides the number of instructions a fiber dispatches
// before yielding back through the scheduler. n must be positive; a
// non-positive value is ignored and the default of 255 is kept.
func WithTurnBound(n int) RuntimeOption {
	return func(rt *Runtime) {
		if n > 0 {
			rt.turnBound = n
		}
	}
}

// WithLogger replaces the Runtime's default stumpy-backed logger. Pass a
// nil logger to silence defect and double-settlement logging entirely.
func WithLogger(logger *logiface.Logger[logiface.Event]) RuntimeOption {
	return func(rt *Runtime) {
		if rt.diag == nil {
			rt.diag = &diagnostics{}
		}
		rt.diag.logger = logger
	}
}

// WithDefectLimiter replaces the rate limiter guarding defect and
// double-settlement log lines. A nil limiter disables rate limiting
// (every occurrence is logged).
func WithDefectLimiter(limiter *catrate.Limiter) RuntimeOption {
	return func(rt *Runtime) {
		if rt.diag == nil {
			rt.diag = &diagnostics{}
		}
		rt.diag.limiter = limiter
	}
}

// WithoutDiagnostics disables defect and double-settlement logging
// entirely. Equivalent to WithLogger(nil), spelled out for callers who
// want the intent explicit at the call site.
func WithoutDiagnostics() RuntimeOption {
	return func(rt *Runtime) {
		rt.diag = nil
	}
}

// WithDefectConverter overrides how a recovered panic (see Defect) is
// converted into a value of the Runtime's own error type E before it
// unwinds through Catch or reaches Execute's onFailure.
//
// Without one, a Defect converts to E automatically only when E is wide
// enough to hold it — E is error, or E is any. For a narrower concrete
// E (a domain error enum, say), supply conv; a Defect for which neither
// the automatic conversion nor conv applies is logged and the fiber
// halts rather than deliver a value whose dynamic type is not actually
// E, which is what an unchecked type assertion at that point would do.
//
// A Runtime is reused across Execute calls with potentially different
// E; WithDefectConverter is scoped to whichever E it was instantiated
// against, so a Runtime driving more than one failure type needs one
// WithDefectConverter per type, or separate Runtimes.
func WithDefectConverter[E any](conv func(*Defect) E) RuntimeOption {
	return func(rt *Runtime) {
		rt.defectConvert = func(d *Defect) any { return conv(d) }
	}
}
