package qio

// Map evaluates e, then applies the pure function f to its success
// value. A panic inside f is captured and converted to a Defect,
// surfaced as a failure of the result's error type E — see Catch for
// recovering it, and WithDefectConverter if E does not itself satisfy
// error or any.
//
// Map is a free function, not a method on Effect, because a method
// cannot add the type parameter B that Map needs beyond Effect's own
// R, E, A.
//
// Map never calls e.build(env) while constructing the wrapping node:
// that call is deferred inside the closure the evaluator invokes from
// its own flat dispatch loop, exactly mirroring Suspend. Building
// eagerly would recurse one native stack frame per level of nesting,
// defeating the point of a trampolined evaluator for a deep Map/Chain
// pipeline built all at once rather than one Suspend step at a time.
func Map[R, E, A, B any](e Effect[R, E, A], f func(A) B) Effect[R, E, B] {
	return Effect[R, E, B]{build: func(env R) *node {
		return mapNode(func() *node { return e.build(env) }, func(v any) any {
			return f(v.(A))
		})
	}}
}

// Chain evaluates e, then interprets f(value) as the next effect to run
// (this is effect-system monadic bind).
func Chain[R, E, A, B any](e Effect[R, E, A], f func(A) Effect[R, E, B]) Effect[R, E, B] {
	return Effect[R, E, B]{build: func(env R) *node {
		return chainNode(func() *node { return e.build(env) }, func(v any) *node {
			return f(v.(A)).build(env)
		})
	}}
}

// Catch evaluates e; if it fails with err, interprets h(err) as a
// recovery effect. The recovery effect may fail with a different error
// type E2; MapError is built on exactly that.
func Catch[R, E, A, E2 any](e Effect[R, E, A], h func(E) Effect[R, E2, A]) Effect[R, E2, A] {
	return Effect[R, E2, A]{build: func(env R) *node {
		return catchNode(func() *node { return e.build(env) }, func(errv any) *node {
			return h(errv.(E)).build(env)
		})
	}}
}

// MapError transforms e's failure type without touching its success
// path, the error-channel counterpart to Map.
func MapError[R, E, A, E2 any](e Effect[R, E, A], f func(E) E2) Effect[R, E2, A] {
	return Catch(e, func(err E) Effect[R, E2, A] {
		return Fail[R, E2, A](f(err))
	})
}

// As replaces e's success value with value, discarding the original,
// once e succeeds.
func As[R, E, A, B any](e Effect[R, E, A], value B) Effect[R, E, B] {
	return Map(e, func(A) B { return value })
}

// Ignore discards e's success value, succeeding with struct{}{} instead.
// Common at the end of a Chain pipeline run purely for effect.
func Ignore[R, E, A any](e Effect[R, E, A]) Effect[R, E, struct{}] {
	return As[R, E, A, struct{}](e, struct{}{})
}

// Tap runs f against e's success value for its side effect, without
// changing what e produces. A panic inside f converts to a Defect like
// any other Map body.
func Tap[R, E, A any](e Effect[R, E, A], f func(A)) Effect[R, E, A] {
	return Map(e, func(a A) A {
		f(a)
		return a
	})
}

// Provide supplies a concrete environment to e, erasing R from its
// signature. Useful at the boundary between application wiring (which
// knows R) and a caller that should not have to.
func Provide[R, E, A any](e Effect[R, E, A], env R) Effect[struct{}, E, A] {
	return Effect[struct{}, E, A]{build: func(struct{}) *node {
		return e.build(env)
	}}
}
