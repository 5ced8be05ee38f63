package qio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVirtualSchedulerAsapNeverRunsSynchronously(t *testing.T) {
	v := NewVirtualScheduler()
	ran := false
	v.Asap(func() { ran = true })
	require.False(t, ran)
	v.Tick()
	require.True(t, ran)
}

func TestVirtualSchedulerDelayOrdersByDeadlineThenSequence(t *testing.T) {
	v := NewVirtualScheduler()
	var order []string
	v.Delay(func() { order = append(order, "b-at-10") }, 10)
	v.Delay(func() { order = append(order, "a-at-5") }, 5)
	v.Delay(func() { order = append(order, "c-at-10-second") }, 10)

	v.Advance(10)
	require.Equal(t, []string{"a-at-5", "b-at-10", "c-at-10-second"}, order)
}

func TestVirtualSchedulerCancelIsLazyAndIdempotent(t *testing.T) {
	v := NewVirtualScheduler()
	ran := false
	tok := v.Delay(func() { ran = true }, 100)
	tok.Cancel()
	tok.Cancel()
	v.Advance(100)
	require.False(t, ran)
}

func TestVirtualSchedulerDrainRunsTasksScheduledByOtherTasks(t *testing.T) {
	v := NewVirtualScheduler()
	count := 0
	var schedule func()
	schedule = func() {
		count++
		if count < 5 {
			v.Delay(schedule, 10)
		}
	}
	v.Delay(schedule, 10)
	v.Drain()
	require.Equal(t, 5, count)
	require.False(t, v.Pending())
}

func TestVirtualSchedulerNowAdvancesExactlyToTarget(t *testing.T) {
	v := NewVirtualScheduler()
	v.Advance(7)
	require.Equal(t, int64(7), v.Now())
	v.Delay(func() {}, 3)
	v.Advance(100)
	require.Equal(t, int64(107), v.Now())
}
