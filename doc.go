// Package qio provides a pure, typed effect system for Go: computations
// described as data before they run, interpreted by a cooperative,
// single-threaded runtime with stack-safe recursion and first-class
// cancellation.
//
// # Core type
//
// [Effect] [R, E, A] describes a computation that, given an environment
// R, produces exactly one success value A or exactly one typed failure
// E, or neither (if cancelled, or built from [Never]). Constructing an
// Effect never runs anything; only [Execute] (or [UnsafeExecuteSync] in
// tests) gives one to a [Runtime] to interpret.
//
//   - [Of]: lift a pure value.
//   - [Fail]: a pre-determined typed failure.
//   - [Never]: an effect that never completes.
//   - [Suspend]: defer construction of an effect until it runs; the
//     building block for recursive effects.
//   - [FromEnv]: read the environment itself.
//
// # Combinators
//
// Map/Chain/Catch and friends are free functions, not methods, because a
// method cannot introduce type parameters beyond its receiver's — Map
// needs a B that Effect[R, E, A] does not have.
//
//   - [Map], [Chain], [Catch], [MapError]: the core three instructions
//     plus the error-channel map derived from Catch.
//   - [As], [Ignore], [Tap]: small conveniences built on Map.
//   - [Provide]: fix an effect's environment, erasing R.
//
// # Asynchrony
//
//   - [From]: suspend until an external registration settles.
//   - [Encase]: lift a possibly-panicking pure function.
//   - [EncaseP]: adapt a channel-based async source (Go's stand-in for a
//     Promise).
//   - [Delay], [Timeout]: schedule through a [Scheduler].
//   - [Zip], [Race], [Once]: concurrent composition. No true
//     parallelism — interleaved dispatch on one Scheduler.
//   - [Abortable]: bridge an [AbortSignal] into a race.
//
// # Concurrency primitives
//
//   - [Ref]: an atomic mutable cell, via [ReadRef], [SetRef], [UpdateRef],
//     [ModifyRef].
//   - [Await]: a single-assignment latch with FIFO waiter resumption, via
//     [SetAwait] and [GetAwait].
//   - [Queue]: a bounded FIFO with direct taker/offerer handoff, via
//     [OfferQueue] and [TakeQueue].
//
// # Streams
//
// [Stream] [R, E, A] is a pull-based source. [StreamMap], [StreamChain]
// and [StreamFilter] wrap its pull function; [StreamFold] consumes it,
// and [StreamForEach], [StreamHaltWhen], [StreamFoldLeft] and
// [StreamAsArray] are built on StreamFold. Sources live in a
// separate file: [FromArray], [StreamOf], [Range], [Const], [Interval],
// [FromEffect], [Produce], [FromQueue], [FromEventEmitter],
// [RejectStream].
//
// # Running effects
//
// [NewRuntime] builds a [Runtime] bound to a [Scheduler] —
// [NewRealtimeScheduler] for production, [NewVirtualScheduler] for
// deterministic tests. [Execute] launches an effect and returns a
// [Token] that cancels it; [UnsafeExecuteSync] drives a
// [VirtualScheduler] to completion and returns the result directly,
// panicking if the effect never settles.
//
// # Error discipline
//
// A panic inside a Map/Chain/Catch body or an Async registration is
// captured as a [Defect] and surfaced on the error channel, recoverable
// like any other typed failure with Catch — automatically when the
// effect's error type is error or any, or otherwise via a
// [WithDefectConverter] supplied to the Runtime. A Defect that escapes
// to the top is logged, rate-limited, through whatever logger the
// Runtime was given; one that cannot be expressed as the effect's error
// type at all is logged the same way and the fiber halts rather than
// deliver a value of the wrong type.
package qio
