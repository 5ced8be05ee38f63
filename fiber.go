package qio

import "sync/atomic"

// fiber is the per-top-level-invocation execution record: the current
// instruction or value, the continuation stack, the environment, the
// caller's callbacks, and the cancellation plumbing. It is
// created by Execute (or, for a concurrently-forked child, by the
// combinator that needs one) and discarded once the computation
// completes, rejects, or is cancelled; it is exclusively owned by its
// launcher and never shared across fibers.
type fiber struct {
	stack []frame
	env   any

	onSuccess func(any)
	onFailure func(any)

	sched     Scheduler
	turnBound int
	diag      *diagnostics

	// defectConv converts a recovered panic (*Defect) into a value of
	// this fiber's own error type, reporting false when no such value
	// exists (see defectConverterFor). Consulted by convertOrHalt
	// instead of an unchecked type assertion, since the evaluator itself
	// holds every value as any and has no other way to check that a
	// Defect actually satisfies a caller-chosen concrete E.
	defectConv func(*Defect) (any, bool)

	// outstanding is the cancel token for the currently-registered Async
	// operation, if any. Guarded by resumeID: a resumption callback only
	// takes effect if it still carries the resumeID that was live when it
	// was installed.
	outstanding Token

	// resumeID is bumped every time a new Async suspension installs its
	// resume callbacks, and on cancellation. A resumption closure captures
	// the id it was installed under; if the fiber's live id has since
	// moved on (a stale, double, or post-cancellation invocation), the
	// resumption is ignored rather than panicking, since cancellation and
	// double-delivery must be silent.
	resumeID atomic.Uint64

	// cancelled and done are read from settle (runtime.go's stepAsync),
	// which a foreign-goroutine-driven EncaseP/FromEventEmitter callback
	// can reach concurrently with a Cancel() call on another goroutine;
	// atomic.Bool gives both the same cross-goroutine safety resumeID
	// already has, instead of a plain bool racing under those callers.
	cancelled atomic.Bool
	done      atomic.Bool
}

// newFiber constructs a fiber ready to run start via runFiber. turnBound
// must be positive; diag may be nil, in which case diagnostics are a
// no-op (see diagnostics.logDefect).
func newFiber(sched Scheduler, turnBound int, diag *diagnostics, env any, defectConv func(*Defect) (any, bool), onSuccess, onFailure func(any)) *fiber {
	return &fiber{
		sched:      sched,
		turnBound:  turnBound,
		diag:       diag,
		env:        env,
		defectConv: defectConv,
		onSuccess:  onSuccess,
		onFailure:  onFailure,
	}
}

func (f *fiber) push(fr frame) { f.stack = append(f.stack, fr) }

func (f *fiber) pop() (frame, bool) {
	n := len(f.stack)
	if n == 0 {
		return frame{}, false
	}
	fr := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return fr, true
}

// fiberToken is the Token returned by Execute. Cancelling it cancels the
// fiber: idempotent, no callback fires, and any
// outstanding Async registration is asked to cancel.
type fiberToken struct {
	f *fiber
}

func (t fiberToken) Cancel() {
	f := t.f
	if !f.cancelled.CompareAndSwap(false, true) {
		return
	}
	f.done.Store(true)
	// Bump resumeID so any in-flight resumption closure becomes stale.
	f.resumeID.Add(1)
	if f.outstanding != nil {
		cancelToken(f.outstanding)
		f.outstanding = nil
	}
}
