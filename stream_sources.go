package qio

import "sync"

// FromArray returns a Stream that yields each element of items in
// order, then exhausts.
func FromArray[R, E, A any](items []A) Stream[R, E, A] {
	idx := 0
	return streamOf(func(R) Effect[R, E, Maybe[A]] {
		return Suspend(func() Effect[R, E, Maybe[A]] {
			if idx >= len(items) {
				return Of[R, E, Maybe[A]](Maybe[A]{})
			}
			v := items[idx]
			idx++
			return Of[R, E, Maybe[A]](Maybe[A]{Valid: true, Value: v})
		})
	})
}

// StreamOf returns a Stream yielding exactly v, then exhausting.
func StreamOf[R, E, A any](v A) Stream[R, E, A] {
	return FromArray[R, E, A]([]A{v})
}

// Range returns a Stream yielding start, start+step, start+2*step, ...
// while the value is strictly less than end (for a positive step) or
// strictly greater than end (for a negative step); a zero step yields
// nothing.
func Range[R, E any](start, end, step int) Stream[R, E, int] {
	next := start
	return streamOf(func(R) Effect[R, E, Maybe[int]] {
		return Suspend(func() Effect[R, E, Maybe[int]] {
			switch {
			case step == 0:
				return Of[R, E, Maybe[int]](Maybe[int]{})
			case step > 0 && next >= end:
				return Of[R, E, Maybe[int]](Maybe[int]{})
			case step < 0 && next <= end:
				return Of[R, E, Maybe[int]](Maybe[int]{})
			}
			v := next
			next += step
			return Of[R, E, Maybe[int]](Maybe[int]{Valid: true, Value: v})
		})
	})
}

// Const returns a Stream that yields v forever. Pair it with
// StreamHaltWhen or a bounded StreamFold cont, or it never exhausts.
func Const[R, E, A any](v A) Stream[R, E, A] {
	return streamOf(func(R) Effect[R, E, Maybe[A]] {
		return Of[R, E, Maybe[A]](Maybe[A]{Valid: true, Value: v})
	})
}

// Interval returns a Stream that yields the tick count (starting at 1)
// every ms logical milliseconds, via the fiber's own Scheduler. Like
// Const, it never exhausts on its own.
func Interval[R, E any](ms int64) Stream[R, E, int64] {
	var n int64
	return streamOf(func(R) Effect[R, E, Maybe[int64]] {
		return From(func(_ R, _ func(E), resolve func(Maybe[int64]), sched Scheduler) Token {
			return sched.Delay(func() {
				n++
				resolve(Maybe[int64]{Valid: true, Value: n})
			}, ms)
		})
	})
}

// FromEffect returns a Stream that yields e's single result once, then
// exhausts. A failure of e fails the stream's pull the one time it is
// reached.
func FromEffect[R, E, A any](e Effect[R, E, A]) Stream[R, E, A] {
	done := false
	return streamOf(func(R) Effect[R, E, Maybe[A]] {
		if done {
			return Of[R, E, Maybe[A]](Maybe[A]{})
		}
		return Map(e, func(a A) Maybe[A] {
			done = true
			return Maybe[A]{Valid: true, Value: a}
		})
	})
}

// Produced is one step of a Produce source: either More is true and
// Value/State carry the emitted element and the generator's next state,
// or More is false and the stream is exhausted.
type Produced[S, A any] struct {
	More  bool
	Value A
	State S
}

// Produce returns a Stream generated by repeatedly running next against
// the generator's current state, starting at seed: an effectful unfold,
// the general case every other source in this file specializes.
func Produce[R, E, S, A any](seed S, next func(S) Effect[R, E, Produced[S, A]]) Stream[R, E, A] {
	state := seed
	return streamOf(func(R) Effect[R, E, Maybe[A]] {
		return Chain(next(state), func(p Produced[S, A]) Effect[R, E, Maybe[A]] {
			if !p.More {
				return Of[R, E, Maybe[A]](Maybe[A]{})
			}
			state = p.State
			return Of[R, E, Maybe[A]](Maybe[A]{Valid: true, Value: p.Value})
		})
	})
}

// FromQueue returns a Stream that yields every value taken from q, in
// the order TakeQueue delivers them, never exhausting on its own.
func FromQueue[R, E, A any](q *Queue[A]) Stream[R, E, A] {
	return streamOf(func(R) Effect[R, E, Maybe[A]] {
		return Map(TakeQueue[R, E, A](q), func(a A) Maybe[A] {
			return Maybe[A]{Valid: true, Value: a}
		})
	})
}

// FromEventEmitter returns a Stream over a Go channel of events, since
// Go has no EventEmitter type and a receive-only channel is the
// idiomatic stand-in. The stream exhausts when events is closed.
func FromEventEmitter[R, E, A any](events <-chan A) Stream[R, E, A] {
	return streamOf(func(R) Effect[R, E, Maybe[A]] {
		return From(func(_ R, _ func(E), resolve func(Maybe[A]), _ Scheduler) Token {
			stop := make(chan struct{})
			var once sync.Once
			go func() {
				select {
				case v, ok := <-events:
					if !ok {
						resolve(Maybe[A]{})
						return
					}
					resolve(Maybe[A]{Valid: true, Value: v})
				case <-stop:
				}
			}()
			return tokenFunc(func() { once.Do(func() { close(stop) }) })
		})
	})
}

// RejectStream returns a Stream whose first pull fails with err.
func RejectStream[R, E, A any](err E) Stream[R, E, A] {
	return streamOf(func(R) Effect[R, E, Maybe[A]] {
		return Fail[R, E, Maybe[A]](err)
	})
}
