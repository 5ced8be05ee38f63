package qio

import "sync"

// Ref[A] is a mutable cell whose read/write operations are each a single
// instruction: the Suspend dispatch that runs one makes the mutex
// acquisition, the read/write, and the resulting Constant all happen
// inside one dispatch step, so a Ref operation is atomic relative to
// every other instruction dispatched in the same fiber graph. The mutex
// additionally makes it safe to share a Ref across fibers driven by
// different RealtimeScheduler instances.
type Ref[A any] struct {
	mu    sync.Mutex
	value A
}

// NewRef creates a Ref holding initial.
func NewRef[A any](initial A) *Ref[A] {
	return &Ref[A]{value: initial}
}

// ReadRef returns an effect that succeeds with r's current value.
//
// ReadRef, SetRef, UpdateRef, and ModifyRef are free functions rather
// than methods on Ref for the same reason every other type-changing
// operation in this package is: a method cannot introduce the R and E
// type parameters an Effect needs beyond Ref's own A.
func ReadRef[R, E, A any](r *Ref[A]) Effect[R, E, A] {
	return Suspend(func() Effect[R, E, A] {
		r.mu.Lock()
		v := r.value
		r.mu.Unlock()
		return Of[R, E, A](v)
	})
}

// SetRef returns an effect that overwrites r's value and succeeds with
// struct{}{}.
func SetRef[R, E, A any](r *Ref[A], v A) Effect[R, E, struct{}] {
	return Suspend(func() Effect[R, E, struct{}] {
		r.mu.Lock()
		r.value = v
		r.mu.Unlock()
		return Of[R, E, struct{}](struct{}{})
	})
}

// UpdateRef returns an effect that replaces r's value with f(current)
// and succeeds with the new value.
func UpdateRef[R, E, A any](r *Ref[A], f func(A) A) Effect[R, E, A] {
	return Suspend(func() Effect[R, E, A] {
		r.mu.Lock()
		r.value = f(r.value)
		v := r.value
		r.mu.Unlock()
		return Of[R, E, A](v)
	})
}

// ModifyRef returns an effect that replaces r's value with the first
// result of f(current) and succeeds with its second result, letting a
// single atomic step both update the cell and compute a derived result
// (e.g. "take and clear").
func ModifyRef[R, E, A, B any](r *Ref[A], f func(A) (A, B)) Effect[R, E, B] {
	return Suspend(func() Effect[R, E, B] {
		r.mu.Lock()
		next, out := f(r.value)
		r.value = next
		r.mu.Unlock()
		return Of[R, E, B](out)
	})
}
