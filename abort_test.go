package qio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAbortControllerFiresOnce(t *testing.T) {
	c := NewAbortController()
	calls := 0
	c.Signal().OnAbort(func(any) { calls++ })
	c.Abort("first")
	c.Abort("second")
	require.Equal(t, 1, calls)
	require.True(t, c.Signal().Aborted())
	require.Equal(t, "first", c.Signal().Reason())
}

func TestAbortSignalOnAbortAfterFiringRunsImmediately(t *testing.T) {
	c := NewAbortController()
	c.Abort("reason")

	var seen any
	unsub := c.Signal().OnAbort(func(r any) { seen = r })
	require.Equal(t, "reason", seen)
	unsub() // harmless no-op
}

func TestAbortSignalUnsubscribeDetaches(t *testing.T) {
	c := NewAbortController()
	calls := 0
	unsub := c.Signal().OnAbort(func(any) { calls++ })
	unsub()
	c.Abort(nil)
	require.Equal(t, 0, calls)
}

func TestAbortableFailsWhenSignalFires(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)

	c := NewAbortController()
	e := Abortable[struct{}, string, int](Never[struct{}, string, int](), c.Signal(), func(reason any) string {
		return "aborted: " + reason.(string)
	})

	var failed string
	Execute[struct{}, string, int](rt, e, struct{}{}, nil, func(err string) { failed = err })
	c.Abort("cancelled by caller")
	vs.Drain()
	require.Equal(t, "aborted: cancelled by caller", failed)
}

func TestAbortableSucceedsWhenEffectWinsFirst(t *testing.T) {
	rt := NewRuntime(NewVirtualScheduler(), WithoutDiagnostics())
	vs := rt.scheduler.(*VirtualScheduler)

	c := NewAbortController()
	e := Abortable[struct{}, string, int](Of[struct{}, string, int](5), c.Signal(), func(any) string {
		return "should not be called"
	})

	var got int
	Execute[struct{}, string, int](rt, e, struct{}{}, func(v int) { got = v }, nil)
	vs.Drain()
	require.Equal(t, 5, got)
}
