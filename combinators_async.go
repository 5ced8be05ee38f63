package qio

import "sync"

// From constructs an Effect that suspends until register calls exactly
// one of the reject/resolve callbacks it is given, or the fiber is
// cancelled first. register is invoked
// synchronously when the effect is dispatched and must return a Token
// the evaluator can cancel; returning nil means cancellation is not
// possible.
func From[R, E, A any](register func(env R, reject func(E), resolve func(A), sched Scheduler) Token) Effect[R, E, A] {
	return Effect[R, E, A]{build: func(env R) *node {
		return asyncNode(func(envAny any, reject, resolve func(any), sched Scheduler) Token {
			return register(
				envAny.(R),
				func(e E) { reject(e) },
				func(a A) { resolve(a) },
				sched,
			)
		})
	}}
}

// Encase wraps fn so that any panic it raises is captured as a Defect
// instead of propagating, the same try/catch-around-Constant shape,
// folded into Suspend whose dispatch already recovers panics into
// Reject per the evaluator's error discipline.
func Encase[R, E, A any](fn func() A) Effect[R, E, A] {
	return Suspend(func() Effect[R, E, A] {
		return Of[R, E, A](fn())
	})
}

// EncaseP adapts a Go-native asynchronous source into an Effect: start
// is called once, synchronously, and must return a receive-only result
// channel and a receive-only failure channel, exactly one of which will
// ever deliver exactly one value. Go has no Promise type, so two
// single-shot channels stand in for it, mirroring how foreign
// callback-based async APIs get bridged into a uniform two-channel
// shape.
//
// The first of result/failure to deliver wins; start's own goroutine is
// free to call resolve/reject from any goroutine. The liveness check
// that guards against a stale or post-cancellation delivery (done,
// cancelled, resumeID) is atomic for exactly this reason. A value that
// is already waiting when start returns settles the effect inline during
// registration; a delivery that arrives after registration has returned
// resumes the continuation by bouncing through sched.Asap, so the
// fiber's stack and frames are still touched from a single logical
// thread even though the callback that wakes it up was not.
func EncaseP[R, E, A any](start func(env R) (result <-chan A, failure <-chan E)) Effect[R, E, A] {
	return From(func(env R, reject func(E), resolve func(A), sched Scheduler) Token {
		result, failure := start(env)
		// A value already waiting on either channel is delivered during
		// registration itself, without a goroutine hop.
		select {
		case v, ok := <-result:
			if ok {
				resolve(v)
				return noopToken{}
			}
		case e, ok := <-failure:
			if ok {
				reject(e)
				return noopToken{}
			}
		default:
		}
		stop := make(chan struct{})
		var once sync.Once
		go func() {
			select {
			case v, ok := <-result:
				if ok {
					resolve(v)
				}
			case e, ok := <-failure:
				if ok {
					reject(e)
				}
			case <-stop:
			}
		}()
		return tokenFunc(func() { once.Do(func() { close(stop) }) })
	})
}

// Delay suspends e's already-produced value for ms logical milliseconds
// before resuming with it, via scheduler.Delay.
func Delay[R, E, A any](e Effect[R, E, A], ms int64) Effect[R, E, A] {
	return Chain(e, func(a A) Effect[R, E, A] {
		return From(func(_ R, _ func(E), resolve func(A), sched Scheduler) Token {
			return sched.Delay(func() { resolve(a) }, ms)
		})
	})
}

// Timeout produces v after ms logical milliseconds, independent of any
// other effect; the same "delayed of" shape as Delay, but with no prior
// effect to chain off of.
func Timeout[R, E, A any](v A, ms int64) Effect[R, E, A] {
	return From(func(_ R, _ func(E), resolve func(A), sched Scheduler) Token {
		return sched.Delay(func() { resolve(v) }, ms)
	})
}
