package qio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	v := runSync[string, int](t, Map(Of[struct{}, string, int](10), func(i int) int { return i + 1 }))
	require.Equal(t, 11, v)
}

func TestMapCapturesPanicAsDefect(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)
	e := Map(Of[struct{}, error, int](10), func(int) int { panic(errors.New("FAILURE")) })
	defer func() {
		r := recover()
		def, ok := r.(*Defect)
		require.True(t, ok)
		require.Equal(t, "map", def.Phase)
		require.ErrorContains(t, def, "FAILURE")
	}()
	UnsafeExecuteSync[error, int](rt, vs, e)
}

func TestChainLeftIdentity(t *testing.T) {
	f := func(a int) Effect[struct{}, string, int] { return Of[struct{}, string, int](a * 2) }
	v := runSync[string, int](t, Chain(Of[struct{}, string, int](21), f))
	require.Equal(t, 42, v)
}

func TestChainRightIdentity(t *testing.T) {
	e := Of[struct{}, string, int](7)
	v := runSync[string, int](t, Chain(e, Of[struct{}, string, int]))
	require.Equal(t, 7, v)
}

func TestChainAssociativity(t *testing.T) {
	e := Of[struct{}, string, int](1)
	f := func(a int) Effect[struct{}, string, int] { return Of[struct{}, string, int](a + 1) }
	g := func(a int) Effect[struct{}, string, int] { return Of[struct{}, string, int](a * 10) }

	left := Chain(Chain(e, f), g)
	right := Chain(e, func(x int) Effect[struct{}, string, int] { return Chain(f(x), g) })

	require.Equal(t, runSync[string, int](t, left), runSync[string, int](t, right))
}

func TestMapFusion(t *testing.T) {
	e := Of[struct{}, string, int](3)
	f := func(i int) int { return i + 1 }
	g := func(i int) int { return i * 2 }

	fused := Map(Map(e, f), g)
	direct := Map(e, func(i int) int { return g(f(i)) })

	require.Equal(t, runSync[string, int](t, fused), runSync[string, int](t, direct))
}

func TestCatchSkipsOnSuccess(t *testing.T) {
	called := false
	e := Catch(Of[struct{}, string, int](5), func(string) Effect[struct{}, string, int] {
		called = true
		return Of[struct{}, string, int](-1)
	})
	v := runSync[string, int](t, e)
	require.Equal(t, 5, v)
	require.False(t, called)
}

func TestCatchRecoversOnFailure(t *testing.T) {
	e := Catch(Fail[struct{}, string, int]("boom"), func(err string) Effect[struct{}, string, int] {
		return Of[struct{}, string, int](len(err))
	})
	v := runSync[string, int](t, e)
	require.Equal(t, 4, v)
}

func TestCatchCanChangeErrorType(t *testing.T) {
	type wrapped struct{ inner string }
	e := Catch(Fail[struct{}, string, int]("boom"), func(err string) Effect[struct{}, wrapped, int] {
		return Fail[struct{}, wrapped, int](wrapped{inner: err})
	})
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)
	require.PanicsWithValue(t, wrapped{inner: "boom"}, func() {
		UnsafeExecuteSync[wrapped, int](rt, vs, e)
	})
}

func TestMapError(t *testing.T) {
	e := MapError(Fail[struct{}, string, int]("boom"), func(s string) int { return len(s) })
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)
	require.PanicsWithValue(t, 4, func() {
		UnsafeExecuteSync[int, int](rt, vs, e)
	})
}

func TestAsAndIgnore(t *testing.T) {
	v := runSync[string, string](t, As[struct{}, string, int, string](Of[struct{}, string, int](1), "replaced"))
	require.Equal(t, "replaced", v)

	runSync[string, struct{}](t, Ignore(Of[struct{}, string, int](1)))
}

func TestTapObservesWithoutChangingResult(t *testing.T) {
	seen := 0
	e := Tap(Of[struct{}, string, int](9), func(v int) { seen = v })
	v := runSync[string, int](t, e)
	require.Equal(t, 9, v)
	require.Equal(t, 9, seen)
}

func TestProvide(t *testing.T) {
	e := Provide(FromEnv[string, string](), "injected")
	v := runSync[string, string](t, e)
	require.Equal(t, "injected", v)
}
