package qio

// Effect[R, E, A] describes a computation that, given an environment R,
// either produces exactly one A or exactly one typed failure E, and does
// neither more than once. An Effect value is immutable and
// inert: constructing one never runs anything, schedules anything, or
// allocates a fiber. Only Execute (or UnsafeExecuteSync in tests) gives
// it to a Runtime to interpret.
//
// build compiles the effect into an instruction tree against a concrete
// environment value. It is Effect's only field, and Effect has no
// methods, deliberately:
// every other operation on an Effect (Map, Chain, Catch, Zip, Race, ...)
// is a free package-level function, because Go does not allow a method
// to introduce type parameters the receiver does not already have, and
// those operations all change A (or E) to a different type.
type Effect[R, E, A any] struct {
	build func(env R) *node
}

// Of constructs an Effect that always succeeds with value, without
// reading its environment.
func Of[R, E, A any](value A) Effect[R, E, A] {
	return Effect[R, E, A]{build: func(R) *node { return constantNode(value) }}
}

// Fail constructs an Effect that always fails with err.
func Fail[R, E, A any](err E) Effect[R, E, A] {
	return Effect[R, E, A]{build: func(R) *node { return rejectNode(err) }}
}

// Never constructs an Effect that neither succeeds nor fails: it
// occupies its fiber forever, until cancelled — a third terminal outcome
// alongside success and failure.
func Never[R, E, A any]() Effect[R, E, A] {
	return Effect[R, E, A]{build: func(R) *node { return neverNode() }}
}

// Suspend defers calling thunk until the effect actually runs, and
// re-runs it on every execution. Use it to wrap a side-effecting
// computation (reading a clock, generating an id) so it is not performed
// at construction time, and to build self-referential (recursive)
// effects without overflowing the Go call stack at construction.
func Suspend[R, E, A any](thunk func() Effect[R, E, A]) Effect[R, E, A] {
	return Effect[R, E, A]{build: func(env R) *node {
		return suspendNode(func() *node { return thunk().build(env) })
	}}
}

// FromEnv constructs an Effect that succeeds with the environment R
// itself, the Go-native analogue of a reader-style "ask".
func FromEnv[R, E any]() Effect[R, E, R] {
	return Effect[R, E, R]{build: func(env R) *node { return constantNode(env) }}
}
