package qio

import "sync"

// awaitOutcome is the result an Await holds once set: either a success
// value or a typed failure, mirroring what Execute's own onSuccess/
// onFailure pair observes for a plain Effect.
type awaitOutcome[E, A any] struct {
	ok  bool
	val A
	err E
}

// awaitWaiter is a pending GetAwait call: it carries the Scheduler it
// was registered under, so SetAwait can resume it via that scheduler's
// Asap without itself needing a Scheduler reference at the point of
// install, so every waiter resumes in FIFO order and never inline with
// SetAwait's own call stack.
type awaitWaiter[E, A any] struct {
	resolve func(A)
	reject  func(E)
	sched   Scheduler
	live    bool
}

// Await[E, A] is a single-assignment latch: the first SetAwait to reach a
// terminal outcome wins, every GetAwait before or after that point
// observes the same outcome — success or failure alike — and every
// waiter queued before the set resolves resumes in the order it queued.
type Await[E, A any] struct {
	mu      sync.Mutex
	isSet   bool
	outcome awaitOutcome[E, A]
	waiters []*awaitWaiter[E, A]
}

// NewAwait creates an unset Await.
func NewAwait[E, A any]() *Await[E, A] {
	return &Await[E, A]{}
}

// IsSet reports whether the latch has been set. Used directly (not
// wrapped as an Effect) by Stream's HaltWhen, which needs to consult it
// on every fold step without paying for a dispatch.
func (a *Await[E, A]) IsSet() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isSet
}

// trySet installs outcome as a's result if a is not yet set, and resumes
// every queued waiter with it. Reports whether it performed the set.
func trySet[E, A any](a *Await[E, A], outcome awaitOutcome[E, A]) bool {
	a.mu.Lock()
	if a.isSet {
		a.mu.Unlock()
		return false
	}
	a.isSet = true
	a.outcome = outcome
	waiters := a.waiters
	a.waiters = nil
	a.mu.Unlock()

	for _, w := range waiters {
		w := w
		if !w.live {
			continue
		}
		w.sched.Asap(func() {
			if !w.live {
				return
			}
			if outcome.ok {
				w.resolve(outcome.val)
			} else {
				w.reject(outcome.err)
			}
		})
	}
	return true
}

// SetAwait evaluates effect; if it reaches a terminal outcome (success or
// failure) and a is not yet set, installs that outcome and resumes every
// queued waiter with it, succeeding with true. If a is already set,
// effect still runs (for its side effects) but the outcome is discarded
// and SetAwait succeeds with false.
//
// A failure of effect is itself both the outcome recorded on a and
// SetAwait's own failure: every waiter observes the same rejection that
// the caller of SetAwait does.
func SetAwait[R, E, A any](a *Await[E, A], effect Effect[R, E, A]) Effect[R, E, bool] {
	succeeded := Chain(effect, func(v A) Effect[R, E, bool] {
		return Suspend(func() Effect[R, E, bool] {
			return Of[R, E, bool](trySet(a, awaitOutcome[E, A]{ok: true, val: v}))
		})
	})
	return Catch(succeeded, func(err E) Effect[R, E, bool] {
		return Suspend(func() Effect[R, E, bool] {
			trySet(a, awaitOutcome[E, A]{ok: false, err: err})
			return Fail[R, E, bool](err)
		})
	})
}

// GetAwait returns an effect that settles immediately with a's outcome if
// already set — success or failure alike — or suspends until the next
// SetAwait reaches one.
func GetAwait[R, E, A any](a *Await[E, A]) Effect[R, E, A] {
	return From(func(_ R, reject func(E), resolve func(A), sched Scheduler) Token {
		a.mu.Lock()
		if a.isSet {
			outcome := a.outcome
			a.mu.Unlock()
			if outcome.ok {
				resolve(outcome.val)
			} else {
				reject(outcome.err)
			}
			return noopToken{}
		}
		w := &awaitWaiter[E, A]{resolve: resolve, reject: reject, sched: sched, live: true}
		a.waiters = append(a.waiters, w)
		a.mu.Unlock()

		return tokenFunc(func() {
			a.mu.Lock()
			w.live = false
			a.mu.Unlock()
		})
	})
}
