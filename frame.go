package qio

// Continuation-stack frames.
//
// A frame is the payload the evaluator pushes when it descends into a Map,
// Chain, or Catch node's inner tree, so it knows what to do once that inner
// tree eventually produces a value or a typed failure. Resume and
// ResumeM name the two dispatch actions a frameKindMap/frameKindChain
// frame performs once popped against a completed value; they are not
// user-constructible instructions, only the pop methods below.
type frameKind uint8

const (
	frameKindChain frameKind = iota
	frameKindCatch
	frameKindMap
)

type frame struct {
	kind frameKind
	fn   func(any) any   // map function, valid for frameKindMap
	fn2  func(any) *node // chain/catch function, valid for frameKindChain/frameKindCatch
}

func chainFrame(f func(any) *node) frame { return frame{kind: frameKindChain, fn2: f} }
func catchFrame(h func(any) *node) frame { return frame{kind: frameKindCatch, fn2: h} }
func mapFrame(f func(any) any) frame     { return frame{kind: frameKindMap, fn: f} }

// resume applies a pure function to the last produced value and
// succeeds with the result. It is what popping a frameKindMap frame
// against a value does.
func (f frame) resume(v any) any { return f.fn(v) }

// resumeM applies f, producing the next instruction to evaluate. It is
// what popping a frameKindChain frame against a value does.
// frameKindCatch frames are never popped this way — they are discarded
// on the success path.
func (f frame) resumeM(v any) *node { return f.fn2(v) }
