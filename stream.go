package qio

// Maybe is the per-pull signal a Stream's source emits: either the next
// element, or Valid=false meaning the stream is exhausted. It plays the
// same role an internal "has next" check plays in most stream models,
// made explicit here since Go has no undefined/null to overload.
type Maybe[A any] struct {
	Valid bool
	Value A
}

// Stream[R, E, A] is a pull-based source of A values: each call to pull
// returns an effect producing the next element, or signalling exhaustion.
// A Stream value is as inert as an Effect — building one runs nothing;
// only folding it does.
//
// Backpressure is structural: StreamFold never calls pull again until
// the effect for the previous element (step) has completed, so a slow
// consumer naturally throttles a source wired to e.g. FromQueue or
// FromEventEmitter.
type Stream[R, E, A any] struct {
	pull func(env R) Effect[R, E, Maybe[A]]
}

func streamOf[R, E, A any](pull func(env R) Effect[R, E, Maybe[A]]) Stream[R, E, A] {
	return Stream[R, E, A]{pull: pull}
}

// StreamFold repeatedly pulls from s and feeds each value to step,
// threading an accumulator of type S, until cont(accumulator) is false
// or s is exhausted. It is a free
// function: Stream's own type parameters don't include S.
//
// The recursion below is expressed as nested Suspend/Chain effects, so
// it runs through the same trampoline every other effect does — folding
// a stream of a million elements costs O(1) native stack, for the same
// reason a chain of a million Maps does.
func StreamFold[R, E, A, S any](s Stream[R, E, A], seed S, cont func(S) bool, step func(S, A) Effect[R, E, S]) Effect[R, E, S] {
	return Suspend(func() Effect[R, E, S] {
		if !cont(seed) {
			return Of[R, E, S](seed)
		}
		return Chain(FromEnv[R, E](), func(env R) Effect[R, E, S] {
			return Chain(s.pull(env), func(next Maybe[A]) Effect[R, E, S] {
				if !next.Valid {
					return Of[R, E, S](seed)
				}
				return Chain(step(seed, next.Value), func(acc S) Effect[R, E, S] {
					return StreamFold(s, acc, cont, step)
				})
			})
		})
	})
}

// StreamMap wraps s so every element passes through f before a consumer
// sees it.
func StreamMap[R, E, A, B any](s Stream[R, E, A], f func(A) B) Stream[R, E, B] {
	return streamOf(func(env R) Effect[R, E, Maybe[B]] {
		return Map(s.pull(env), func(m Maybe[A]) Maybe[B] {
			if !m.Valid {
				return Maybe[B]{}
			}
			return Maybe[B]{Valid: true, Value: f(m.Value)}
		})
	})
}

// StreamChain flattens s: every element of s becomes a sub-stream via f,
// and every sub-stream's elements are folded into the same accumulator
// before s is pulled again.
func StreamChain[R, E, A, B any](s Stream[R, E, A], f func(A) Stream[R, E, B]) Stream[R, E, B] {
	var (
		current Stream[R, E, B]
		active  bool
		pull    func(env R) Effect[R, E, Maybe[B]]
	)
	pull = func(env R) Effect[R, E, Maybe[B]] {
		if active {
			return Chain(current.pull(env), func(m Maybe[B]) Effect[R, E, Maybe[B]] {
				if m.Valid {
					return Of[R, E, Maybe[B]](m)
				}
				active = false
				return pull(env)
			})
		}
		return Chain(s.pull(env), func(m Maybe[A]) Effect[R, E, Maybe[B]] {
			if !m.Valid {
				return Of[R, E, Maybe[B]](Maybe[B]{})
			}
			current = f(m.Value)
			active = true
			return pull(env)
		})
	}
	return streamOf(pull)
}

// StreamFilter skips every element of s failing p.
func StreamFilter[R, E, A any](s Stream[R, E, A], p func(A) bool) Stream[R, E, A] {
	return streamOf(func(env R) Effect[R, E, Maybe[A]] {
		var loop func() Effect[R, E, Maybe[A]]
		loop = func() Effect[R, E, Maybe[A]] {
			return Chain(s.pull(env), func(m Maybe[A]) Effect[R, E, Maybe[A]] {
				if !m.Valid || p(m.Value) {
					return Of[R, E, Maybe[A]](m)
				}
				return loop()
			})
		}
		return loop()
	})
}

// StreamForEach runs effect(value) for every element of s, discarding
// its result, and succeeds with struct{}{} once s is exhausted: fold
// with unit state and cont always true.
func StreamForEach[R, E, A any](s Stream[R, E, A], effect func(A) Effect[R, E, struct{}]) Effect[R, E, struct{}] {
	return StreamFold(s, struct{}{}, func(struct{}) bool { return true }, func(_ struct{}, a A) Effect[R, E, struct{}] {
		return effect(a)
	})
}

// Settled is satisfied by any *Await[E, A] regardless of its type
// parameters; StreamHaltWhen only needs to poll IsSet, not read or write
// the latch's value.
type Settled interface {
	IsSet() bool
}

// StreamHaltWhen folds s like StreamFold, but also stops as soon as halt
// becomes set, even mid-stream: cont is enhanced to also consult the
// latch's IsSet.
func StreamHaltWhen[R, E, A, S any](s Stream[R, E, A], halt Settled, seed S, cont func(S) bool, step func(S, A) Effect[R, E, S]) Effect[R, E, S] {
	return StreamFold(s, seed, func(acc S) bool {
		return cont(acc) && !halt.IsSet()
	}, step)
}

// StreamFoldLeft folds s to completion (cont always true), threading a
// pure combining function instead of an effect-returning step.
func StreamFoldLeft[R, E, A, S any](s Stream[R, E, A], seed S, f func(S, A) S) Effect[R, E, S] {
	return StreamFold(s, seed, func(S) bool { return true }, func(acc S, a A) Effect[R, E, S] {
		return Of[R, E, S](f(acc, a))
	})
}

// StreamAsArray folds s into a slice of every element it produced.
func StreamAsArray[R, E, A any](s Stream[R, E, A]) Effect[R, E, []A] {
	return StreamFoldLeft(s, []A(nil), func(acc []A, a A) []A {
		return append(acc, a)
	})
}
