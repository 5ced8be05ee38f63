package qio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScenarioA checks that Of(10).Map(i => i + 1) resolves to 11
// synchronously on the test scheduler.
func TestScenarioA(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	var got int
	Execute[struct{}, string, int](rt, Map(Of[struct{}, string, int](10), func(i int) int { return i + 1 }),
		struct{}{}, func(v int) { got = v }, nil)
	require.Equal(t, 11, got)
}

// TestScenarioB checks that a panicking Map body produces a typed
// failure carrying the panic, on the same synchronous turn — the
// trampoline never needs a scheduler hop to convert a Map panic into a
// failure.
func TestScenarioB(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)

	var failed *Defect
	Execute[struct{}, error, int](rt, Map(Of[struct{}, error, int](10), func(int) int {
		panic(errorFAILURE{})
	}), struct{}{}, nil, func(e error) { failed, _ = e.(*Defect) })

	require.NotNil(t, failed)
	require.Equal(t, "map", failed.Phase)
	require.IsType(t, errorFAILURE{}, failed.Value)
	require.Equal(t, int64(0), vs.Now())
}

type errorFAILURE struct{}

func (errorFAILURE) Error() string { return "FAILURE" }

// TestScenarioC checks that Race(Timeout("A", 1000), Timeout("B", 2000))
// resolves to "A" at logical time 1000, and that advancing further does
// not deliver "B".
func TestScenarioC(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)

	var got string
	bDelivered := false
	a := Timeout[struct{}, string]("A", 1000)
	b := Map(Timeout[struct{}, string]("B", 2000), func(s string) string { bDelivered = true; return s })

	Execute[struct{}, string, string](rt, Race(a, b), struct{}{}, func(v string) { got = v }, nil)
	vs.Advance(1000)
	require.Equal(t, "A", got)
	require.Equal(t, int64(1000), vs.Now())

	vs.Advance(1000)
	require.False(t, bDelivered)
}

// TestScenarioD checks that Zip(Timeout(1, 100), a 50ms-delayed reject)
// rejects at logical time 50 with err, and that the sibling is cancelled
// (no resolution at 100).
func TestScenarioD(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)

	siblingResolved := false
	sibling := Map(Timeout[struct{}, string](1, 100), func(i int) int { siblingResolved = true; return i })
	rejecter := delayedReject[struct{}, int]("err", 50)

	var failed string
	Execute[struct{}, string, Pair[int, int]](rt, Zip(rejecter, sibling), struct{}{}, nil, func(e string) { failed = e })

	vs.Advance(50)
	require.Equal(t, "err", failed)
	require.Equal(t, int64(50), vs.Now())

	vs.Advance(50)
	require.False(t, siblingResolved)
}

// TestScenarioE is the three-offer, one-concurrent-taker shape with FIFO
// preserved end to end, complementing queue_test.go's
// TestQueueRendezvousThenBuffers and TestQueueOfferBlocksWhenBufferFull.
func TestScenarioE(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)

	q := NewQueue[int](2)
	var takenFIFO []int
	Execute[struct{}, string, int](rt, TakeQueue[struct{}, string, int](q), struct{}{}, func(v int) { takenFIFO = append(takenFIFO, v) }, nil)

	for _, v := range []int{1, 2, 3} {
		Execute[struct{}, string, bool](rt, OfferQueue[struct{}, string, int](q, v), struct{}{}, nil, nil)
	}
	vs.Drain()
	require.Equal(t, []int{1}, takenFIFO)

	Execute[struct{}, string, int](rt, TakeQueue[struct{}, string, int](q), struct{}{}, func(v int) { takenFIFO = append(takenFIFO, v) }, nil)
	Execute[struct{}, string, int](rt, TakeQueue[struct{}, string, int](q), struct{}{}, func(v int) { takenFIFO = append(takenFIFO, v) }, nil)
	vs.Drain()
	require.Equal(t, []int{1, 2, 3}, takenFIFO)
}

// TestScenarioF restates await_test.go's TestAwaitFIFOResumptionAfterSet
// against a concrete shape: 3 getters launched first, then a setter.
func TestScenarioF(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)

	a := NewAwait[string, int]()
	var results []int
	for i := 0; i < 3; i++ {
		Execute[struct{}, string, int](rt, GetAwait[struct{}, string, int](a), struct{}{},
			func(v int) { results = append(results, v) }, nil)
	}

	setTurn := vs.Now()
	Execute[struct{}, string, bool](rt, SetAwait(a, Of[struct{}, string, int](7)), struct{}{}, nil, nil)
	vs.Drain()

	require.Equal(t, []int{7, 7, 7}, results)
	require.GreaterOrEqual(t, vs.Now(), setTurn)
}
