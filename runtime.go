package qio

// defaultTurnBound is the per-turn dispatch ceiling used both by Runtime
// when the caller does not supply WithTurnBound, and by every child
// fiber spawned internally by Zip/Race/Once: From's register signature
// (env, reject, resolve, scheduler) has no channel for a parent Runtime's
// options to reach a child fork, so forks always run at this default.
const defaultTurnBound = 255

// Runtime holds the configuration a top-level Execute call runs under: a
// Scheduler to yield through, a per-turn dispatch bound, and the
// diagnostics sink recovered defects and double-settlements are logged
// to. It is stateless between calls to Execute; nothing about a live
// fiber lives on the Runtime itself.
type Runtime struct {
	scheduler Scheduler
	turnBound int
	diag      *diagnostics
	// defectConvert overrides the automatic Defect-to-E conversion; see
	// WithDefectConverter. Boxed as func(*Defect) any since Runtime is
	// not itself generic over E.
	defectConvert func(*Defect) any
}

// NewRuntime constructs a Runtime bound to scheduler. Without options it
// uses a dispatch bound of 255 and a default stumpy-backed logger.
func NewRuntime(scheduler Scheduler, opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		scheduler: scheduler,
		turnBound: defaultTurnBound,
		diag:      defaultDiagnostics(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.turnBound <= 0 {
		rt.turnBound = defaultTurnBound
	}
	return rt
}

// Execute launches e against env, invoking exactly one of onSuccess or
// onFailure at most once, and returns a Token that cancels the run.
// Execute is a free function, not a method, because Go forbids a method
// from introducing type parameters beyond its receiver's; the same
// constraint is why Map/Chain/Catch/the Ref and Stream operations are
// free functions throughout this package.
func Execute[R, E, A any](rt *Runtime, e Effect[R, E, A], env R, onSuccess func(A), onFailure func(E)) Token {
	convert := rt.defectConvert
	f := newFiber(rt.scheduler, rt.turnBound, rt.diag, env, defectConverterFor[E](convert),
		func(v any) {
			if onSuccess != nil {
				onSuccess(v.(A))
			}
		},
		func(v any) {
			if onFailure != nil {
				onFailure(v.(E))
			}
		},
	)
	start := cur{kind: curNode, node: e.build(env)}
	runFiber(f, start)
	return fiberToken{f: f}
}

// UnsafeExecuteSync runs e to completion against a VirtualScheduler and
// returns its success value, panicking otherwise. It exists for tests:
// it drains vs synchronously, so it must never be called from
// inside a running fiber, and e must not depend on real wall-clock time.
func UnsafeExecuteSync[E, A any](rt *Runtime, vs *VirtualScheduler, e Effect[struct{}, E, A]) A {
	return UnsafeExecuteSyncEnv[struct{}, E, A](rt, vs, struct{}{}, e)
}

// UnsafeExecuteSyncEnv is UnsafeExecuteSync for an effect that reads a
// non-empty environment.
func UnsafeExecuteSyncEnv[R, E, A any](rt *Runtime, vs *VirtualScheduler, env R, e Effect[R, E, A]) A {
	var (
		settled bool
		ok      bool
		value   A
		failure E
	)
	Execute[R, E, A](rt, e, env,
		func(a A) { settled, ok, value = true, true, a },
		func(errv E) { settled, ok, failure = true, false, errv },
	)
	vs.Drain()
	if !settled {
		panic(ErrPending)
	}
	if !ok {
		panic(failure)
	}
	return value
}

// curKind tags what the evaluator is currently holding: an instruction
// still to be dispatched, a value flowing up through success frames, an
// error unwinding to the nearest Catch frame, or a halt (the fiber has
// suspended on an Async registration, hit Never, or already terminated).
type curKind uint8

const (
	curNode curKind = iota
	curValue
	curError
	curHalt
)

type cur struct {
	kind curKind
	node *node
	val  any
}

// convertOrHalt turns def into a curError value of f's own error type
// via f.defectConv, so it can unwind through Catch frames like any
// other typed failure. When no such conversion exists — a concrete E
// the fiber was never given a WithDefectConverter for — def is logged a
// second time, tagged "unconvertible", and the fiber halts instead of
// unwinding with a value that is not actually of type E.
func (f *fiber) convertOrHalt(def *Defect) cur {
	if v, ok := f.defectConv(def); ok {
		return cur{kind: curError, val: v}
	}
	f.diag.logDefect("unconvertible", def)
	return cur{kind: curHalt}
}

// runFiber drives f's trampoline from start until it halts: terminates,
// suspends on an outstanding Async registration, or yields back through
// f.sched.Asap having exhausted its per-turn dispatch bound. It never
// recurses to advance the same fiber — every step below either returns a
// new cur to loop on immediately or returns from runFiber entirely,
// which is what makes Map/Chain/Catch chains stack-safe regardless of
// depth.
func runFiber(f *fiber, start cur) {
	c := start
	dispatched := 0

	for {
		if f.cancelled.Load() || f.done.Load() {
			return
		}

		if dispatched >= f.turnBound {
			saved := c
			f.sched.Asap(func() { runFiber(f, saved) })
			return
		}
		dispatched++

		switch c.kind {
		case curNode:
			c = stepNode(f, c.node)

		case curValue:
			fr, ok := f.pop()
			if !ok {
				terminate(f, true, c.val)
				return
			}
			switch fr.kind {
			case frameKindCatch:
				// Success skips Catch frames unchanged.
			case frameKindChain:
				var next *node
				if def := tryCatch("chain", func() { next = fr.resumeM(c.val) }); def != nil {
					f.diag.logDefect("chain", def)
					c = f.convertOrHalt(def)
				} else {
					c = cur{kind: curNode, node: next}
				}
			case frameKindMap:
				var nv any
				if def := tryCatch("map", func() { nv = fr.resume(c.val) }); def != nil {
					f.diag.logDefect("map", def)
					c = f.convertOrHalt(def)
				} else {
					c = cur{kind: curValue, val: nv}
				}
			}

		case curError:
			fr, ok := f.pop()
			if !ok {
				terminate(f, false, c.val)
				return
			}
			if fr.kind != frameKindCatch {
				// Map and Chain frames are discarded unwinding an error.
				continue
			}
			var next *node
			if def := tryCatch("catch", func() { next = fr.resumeM(c.val) }); def != nil {
				f.diag.logDefect("catch", def)
				c = f.convertOrHalt(def)
			} else {
				c = cur{kind: curNode, node: next}
			}
		}

		if c.kind == curHalt {
			return
		}
	}
}

// stepNode dispatches a single instruction node, returning what the
// evaluator should hold next. For Async it either resumes inline (the
// registration settled synchronously) or returns curHalt having wired
// f.outstanding and the resumeID-guarded resumption callbacks.
func stepNode(f *fiber, nd *node) cur {
	switch nd.tag {
	case tagConstant:
		return cur{kind: curValue, val: nd.value}

	case tagReject:
		return cur{kind: curError, val: nd.value}

	case tagNever:
		return cur{kind: curHalt}

	case tagSuspend:
		var next *node
		if def := tryCatch("suspend", func() { next = nd.thunk() }); def != nil {
			f.diag.logDefect("suspend", def)
			return f.convertOrHalt(def)
		}
		return cur{kind: curNode, node: next}

	case tagMap:
		f.push(mapFrame(nd.fn))
		return cur{kind: curNode, node: nd.innerFn()}

	case tagChain:
		f.push(chainFrame(nd.fn2))
		return cur{kind: curNode, node: nd.innerFn()}

	case tagCatch:
		f.push(catchFrame(nd.fn2))
		return cur{kind: curNode, node: nd.innerFn()}

	case tagAsync:
		return stepAsync(f, nd)

	default:
		panic("qio: unreachable instruction tag")
	}
}

func stepAsync(f *fiber, nd *node) cur {
	myID := f.resumeID.Add(1)

	registering := true
	var (
		settled    bool
		settledVal cur
	)

	settle := func(kind curKind, val any) {
		if f.done.Load() || f.cancelled.Load() || f.resumeID.Load() != myID {
			f.diag.logDoubleSettle("async")
			return
		}
		f.resumeID.Add(1)
		f.outstanding = nil
		nc := cur{kind: kind, val: val}
		if registering {
			settled = true
			settledVal = nc
			return
		}
		// The registration already returned: this is a genuine
		// asynchronous resumption. Bounce through the scheduler so the
		// continuation always runs on its single logical thread, even
		// if the caller invoked us from a foreign goroutine.
		f.sched.Asap(func() { runFiber(f, nc) })
	}

	reject := func(e any) { settle(curError, e) }
	resolve := func(v any) { settle(curValue, v) }

	var tok Token
	def := tryCatch("async-register", func() {
		tok = nd.register(f.env, reject, resolve, f.sched)
	})
	registering = false

	if def != nil {
		f.diag.logDefect("async-register", def)
		return f.convertOrHalt(def)
	}
	if settled {
		return settledVal
	}
	f.outstanding = tok
	return cur{kind: curHalt}
}

// terminate delivers the single terminal callback for f: exactly one of
// onSuccess/onFailure fires, and only the first call counts.
func terminate(f *fiber, ok bool, val any) {
	if !f.done.CompareAndSwap(false, true) {
		return
	}
	f.outstanding = nil
	if ok {
		if f.onSuccess != nil {
			f.onSuccess(val)
		}
	} else {
		if f.onFailure != nil {
			f.onFailure(val)
		}
	}
}
