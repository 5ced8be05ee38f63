package qio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// orderRejected is a concrete, non-error domain failure type: it cannot
// itself hold a *Defect the way the error interface can, so it exercises
// the path that needs an explicit WithDefectConverter.
type orderRejected struct {
	reason string
}

func TestMapPanicWithConcreteDomainErrorHaltsWithoutAConverter(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)

	e := Map(Of[struct{}, orderRejected, int](1), func(int) int { panic("boom") })

	var succeeded, failed bool
	Execute[struct{}, orderRejected, int](rt, e, struct{}{},
		func(int) { succeeded = true },
		func(orderRejected) { failed = true },
	)
	vs.Drain()

	require.False(t, succeeded)
	require.False(t, failed, "a Defect that cannot be expressed as orderRejected must not be delivered as one")
}

func TestMapPanicWithConcreteDomainErrorRecoversViaDefectConverter(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics(),
		WithDefectConverter(func(d *Defect) orderRejected {
			return orderRejected{reason: d.Error()}
		}),
	)
	vs := rt.scheduler.(*VirtualScheduler)

	e := Catch(
		Map(Of[struct{}, orderRejected, int](1), func(int) int { panic("boom") }),
		func(err orderRejected) Effect[struct{}, orderRejected, int] {
			return Of[struct{}, orderRejected, int](-1)
		},
	)

	var got int
	var failed bool
	Execute[struct{}, orderRejected, int](rt, e, struct{}{},
		func(v int) { got = v },
		func(orderRejected) { failed = true },
	)
	vs.Drain()

	require.False(t, failed)
	require.Equal(t, -1, got)
}

func TestChainPanicWithErrorTypeIsRecoverableByCatch(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)

	e := Catch(
		Chain(Of[struct{}, error, int](1), func(int) Effect[struct{}, error, int] {
			panic("chain blew up")
		}),
		func(err error) Effect[struct{}, error, int] {
			def, ok := err.(*Defect)
			require.True(t, ok)
			require.Equal(t, "chain", def.Phase)
			return Of[struct{}, error, int](7)
		},
	)

	got := UnsafeExecuteSync[error, int](rt, vs, e)
	require.Equal(t, 7, got)
}

func TestZipChildDefectWithErrorTypePropagatesAsFailure(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)

	a := Map(Of[struct{}, error, int](1), func(int) int { panic("zip side blew up") })
	b := Of[struct{}, error, string]("ok")

	var failed bool
	Execute[struct{}, error, Pair[int, string]](rt, Zip(a, b), struct{}{}, nil,
		func(err error) {
			failed = true
			_, ok := err.(*Defect)
			require.True(t, ok)
		},
	)
	vs.Drain()
	require.True(t, failed)
}

// TestFiberCancelConcurrentWithForeignGoroutineResolve checks that
// cancelling a fiber from one goroutine while an EncaseP source
// delivers from another never corrupts the fiber's cancelled/done state
// — both fields are read from settle and written from Cancel, each on
// its own goroutine, so they must be atomic rather than plain bool for
// this to be well-defined at all.
func TestFiberCancelConcurrentWithForeignGoroutineResolve(t *testing.T) {
	sched := NewRealtimeScheduler()
	defer sched.Close()
	rt := NewRuntime(sched, WithoutDiagnostics())

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		result := make(chan int, 1)
		failure := make(chan string, 1)

		e := EncaseP(func(struct{}) (<-chan int, <-chan string) { return result, failure })

		tok := Execute[struct{}, string, int](rt, e, struct{}{}, nil, nil)

		wg.Add(2)
		go func() {
			defer wg.Done()
			result <- 1
		}()
		go func() {
			defer wg.Done()
			tok.Cancel()
		}()
	}
	wg.Wait()
}
