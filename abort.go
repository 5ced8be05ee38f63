package qio

import "sync"

// AbortSignal and AbortController are the Go-native cancellation handle
// this package exposes to bridge an external cancellation source (a
// deadline, a user action, a parent request) into an Effect, following
// the same W3C AbortController/AbortSignal shape as the pack's event
// loop. Unlike that implementation, OnAbort here returns an unsubscribe
// closure instead of being a documented no-op, since Abortable below
// needs to detach its listener once the race it is guarding settles.
type AbortSignal struct {
	mu       sync.Mutex
	aborted  bool
	reason   any
	nextID   uint64
	handlers map[uint64]func(reason any)
}

func newAbortSignal() *AbortSignal {
	return &AbortSignal{handlers: make(map[uint64]func(any))}
}

// Aborted reports whether the signal has fired.
func (s *AbortSignal) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// Reason returns the value passed to Abort, or nil if not yet aborted.
func (s *AbortSignal) Reason() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// OnAbort registers handler to run when the signal fires, or immediately
// (synchronously, with the current reason) if it already has. The
// returned unsubscribe function removes the handler; calling it after
// the signal has already fired is a harmless no-op.
func (s *AbortSignal) OnAbort(handler func(reason any)) (unsubscribe func()) {
	noop := func() {}
	if handler == nil {
		return noop
	}

	s.mu.Lock()
	if s.aborted {
		reason := s.reason
		s.mu.Unlock()
		handler(reason)
		return noop
	}

	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

func (s *AbortSignal) abort(reason any) {
	s.mu.Lock()
	if s.aborted {
		s.mu.Unlock()
		return
	}
	s.aborted = true
	s.reason = reason
	handlers := make([]func(any), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.handlers = nil
	s.mu.Unlock()

	for _, h := range handlers {
		h(reason)
	}
}

// AbortController owns an AbortSignal and is the only thing that can
// fire it.
type AbortController struct {
	signal *AbortSignal
}

// NewAbortController creates a controller with a fresh, unfired signal.
func NewAbortController() *AbortController {
	return &AbortController{signal: newAbortSignal()}
}

// Signal returns the controller's AbortSignal. Always the same value.
func (c *AbortController) Signal() *AbortSignal {
	return c.signal
}

// Abort fires the controller's signal with reason, or a default
// *AbortError if reason is nil. Idempotent: later calls are no-ops.
func (c *AbortController) Abort(reason any) {
	if reason == nil {
		reason = &AbortError{Reason: "Aborted"}
	}
	c.signal.abort(reason)
}

// AbortError is the default reason used when Abort is called with a nil
// reason, and a convenient sentinel for Abortable's onAbort callback to
// wrap into a typed E.
type AbortError struct {
	Reason any
}

func (e *AbortError) Error() string {
	switch r := e.Reason.(type) {
	case nil:
		return "qio: operation aborted"
	case string:
		return "qio: operation aborted: " + r
	case error:
		return "qio: operation aborted: " + r.Error()
	default:
		return "qio: operation aborted"
	}
}

func (e *AbortError) Unwrap() error {
	if err, ok := e.Reason.(error); ok {
		return err
	}
	return nil
}

// Abortable races e against signal firing: if signal aborts first, the
// combined effect fails with onAbort's result and e is cancelled; if e
// finishes first, the signal listener is detached and never fires
// anything. This is the Effect-level counterpart to passing an
// AbortSignal to a fetch-like API.
func Abortable[R, E, A any](e Effect[R, E, A], signal *AbortSignal, onAbort func(reason any) E) Effect[R, E, A] {
	guard := From(func(_ R, reject func(E), _ func(A), _ Scheduler) Token {
		unsubscribe := signal.OnAbort(func(reason any) {
			reject(onAbort(reason))
		})
		return tokenFunc(unsubscribe)
	})
	return Race(e, guard)
}
