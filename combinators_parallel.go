package qio

import "sync"

// Pair is the Go-native stand-in for the tuple Zip produces.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip runs a and b concurrently (interleaved on whatever Scheduler the
// enclosing fiber uses — there is no true parallelism) and
// succeeds with both results once both have. Failure of either cancels
// the other and fails the combined effect with the first failure seen.
//
// The child forks below are independent fibers, not sub-steps of the
// parent: Zip is itself built as an Async registration, and
// From's register signature (env, reject, resolve, scheduler) carries no
// channel back to a Runtime's options, so the children always run at
// defaultTurnBound with no diagnostics sink and no WithDefectConverter
// override — a Defect recovered inside a child fork only unwinds as a
// typed E automatically (E is error, or E is any), same as Race and
// Once.
func Zip[R, E, A, B any](a Effect[R, E, A], b Effect[R, E, B]) Effect[R, E, Pair[A, B]] {
	return From(func(env R, reject func(E), resolve func(Pair[A, B]), sched Scheduler) Token {
		var (
			done       bool
			gotA, gotB bool
			valA       A
			valB       B
			tokA, tokB Token
		)

		succeedA := func(v A) {
			if done {
				return
			}
			valA, gotA = v, true
			if gotB {
				done = true
				resolve(Pair[A, B]{First: valA, Second: valB})
			}
		}
		succeedB := func(v B) {
			if done {
				return
			}
			valB, gotB = v, true
			if gotA {
				done = true
				resolve(Pair[A, B]{First: valA, Second: valB})
			}
		}
		fail := func(e E) {
			if done {
				return
			}
			done = true
			cancelToken(tokA)
			cancelToken(tokB)
			reject(e)
		}

		fa := newFiber(sched, defaultTurnBound, nil, env, defectConverterFor[E](nil),
			func(v any) { succeedA(v.(A)) },
			func(e any) { fail(e.(E)) },
		)
		fb := newFiber(sched, defaultTurnBound, nil, env, defectConverterFor[E](nil),
			func(v any) { succeedB(v.(B)) },
			func(e any) { fail(e.(E)) },
		)
		tokA = fiberToken{f: fa}
		tokB = fiberToken{f: fb}

		// Child fibers are enqueued in argument order, but neither starts
		// synchronously with the parent's fork.
		sched.Asap(func() {
			if !fa.cancelled.Load() && !fa.done.Load() {
				runFiber(fa, cur{kind: curNode, node: a.build(env)})
			}
		})
		sched.Asap(func() {
			if !fb.cancelled.Load() && !fb.done.Load() {
				runFiber(fb, cur{kind: curNode, node: b.build(env)})
			}
		})

		return tokenFunc(func() {
			cancelToken(tokA)
			cancelToken(tokB)
		})
	})
}

// Race runs a and b concurrently; whichever reaches a terminal state
// first (success or failure) wins, and the other is cancelled. At most
// one of resolve/reject ever fires.
func Race[R, E, A any](a, b Effect[R, E, A]) Effect[R, E, A] {
	return From(func(env R, reject func(E), resolve func(A), sched Scheduler) Token {
		var (
			done       bool
			tokA, tokB Token
		)

		finishOK := func(v A) {
			if done {
				return
			}
			done = true
			cancelToken(tokA)
			cancelToken(tokB)
			resolve(v)
		}
		finishErr := func(e E) {
			if done {
				return
			}
			done = true
			cancelToken(tokA)
			cancelToken(tokB)
			reject(e)
		}

		fa := newFiber(sched, defaultTurnBound, nil, env, defectConverterFor[E](nil),
			func(v any) { finishOK(v.(A)) },
			func(e any) { finishErr(e.(E)) },
		)
		fb := newFiber(sched, defaultTurnBound, nil, env, defectConverterFor[E](nil),
			func(v any) { finishOK(v.(A)) },
			func(e any) { finishErr(e.(E)) },
		)
		tokA = fiberToken{f: fa}
		tokB = fiberToken{f: fb}

		sched.Asap(func() {
			if !fa.cancelled.Load() && !fa.done.Load() {
				runFiber(fa, cur{kind: curNode, node: a.build(env)})
			}
		})
		sched.Asap(func() {
			if !fb.cancelled.Load() && !fb.done.Load() {
				runFiber(fb, cur{kind: curNode, node: b.build(env)})
			}
		})

		return tokenFunc(func() {
			cancelToken(tokA)
			cancelToken(tokB)
		})
	})
}

// onceState is the memo cell shared by every subscriber of a value
// returned by Once: at most one underlying execution of the wrapped
// effect ever runs, and every subscriber — whether it joined before or
// after that execution settled — observes the same outcome.
type onceState[E, A any] struct {
	mu        sync.Mutex
	started   bool
	settled   bool
	ok        bool
	value     A
	failure   E
	onResolve []func(A)
	onReject  []func(E)
}

// Once wraps e so that concurrent forks share a single execution: the
// first fork starts the work, later forks attach as subscribers while it
// is pending, and any fork arriving after completion immediately
// receives the cached outcome.
//
// A cached failure is replayed to every subscriber exactly like a cached
// success, so Once never silently produces different outcomes for
// different subscribers depending on arrival order.
func Once[R, E, A any](e Effect[R, E, A]) Effect[R, E, A] {
	st := &onceState[E, A]{}

	return From(func(env R, reject func(E), resolve func(A), sched Scheduler) Token {
		st.mu.Lock()
		if st.settled {
			ok, v, err := st.ok, st.value, st.failure
			st.mu.Unlock()
			// Replayed on the next turn, never inline, matching the Await
			// resumption rule a cache-hit subscriber should see the same
			// discipline as a fresh fork that arrived before settlement.
			sched.Asap(func() {
				if ok {
					resolve(v)
				} else {
					reject(err)
				}
			})
			return noopToken{}
		}

		st.onResolve = append(st.onResolve, resolve)
		st.onReject = append(st.onReject, reject)
		owner := !st.started
		st.started = true
		st.mu.Unlock()

		if !owner {
			// Attached as a subscriber; the owner's fork drives the work.
			return noopToken{}
		}

		f := newFiber(sched, defaultTurnBound, nil, env, defectConverterFor[E](nil),
			func(v any) {
				st.mu.Lock()
				st.settled, st.ok, st.value = true, true, v.(A)
				subs := st.onResolve
				st.onResolve, st.onReject = nil, nil
				st.mu.Unlock()
				for _, cb := range subs {
					cb(v.(A))
				}
			},
			func(errv any) {
				st.mu.Lock()
				st.settled, st.ok, st.failure = true, false, errv.(E)
				subs := st.onReject
				st.onResolve, st.onReject = nil, nil
				st.mu.Unlock()
				for _, cb := range subs {
					cb(errv.(E))
				}
			},
		)
		runFiber(f, cur{kind: curNode, node: e.build(env)})

		// Cancelling one subscriber's own fork never cancels the shared
		// work underneath it; tracking "all subscribers gone" to justify
		// that would need reference counting this type does not keep.
		return noopToken{}
	})
}
