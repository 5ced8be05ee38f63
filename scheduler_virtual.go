package qio

import "container/heap"

// VirtualScheduler is a deterministic Scheduler whose logical clock only
// advances when told to, making it suitable for tests. Asap tasks never
// run synchronously with the call that
// scheduled them — they become due at the current logical time but are
// only drained on the next Tick/Drain/Advance, exactly like a real
// scheduler's "never in the current turn" guarantee.
type VirtualScheduler struct {
	now    int64
	seq    uint64
	timers timerHeapV
}

type virtualItem struct {
	fn        func()
	deadline  int64
	seq       uint64
	cancelled bool
	index     int
}

func (it *virtualItem) Cancel() { it.cancelled = true }

type timerHeapV []*virtualItem

func (h timerHeapV) Len() int { return len(h) }
func (h timerHeapV) Less(i, j int) bool {
	if h[i].deadline == h[j].deadline {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline < h[j].deadline
}
func (h timerHeapV) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *timerHeapV) Push(x any) {
	it := x.(*virtualItem)
	it.index = len(*h)
	*h = append(*h, it)
}
func (h *timerHeapV) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// NewVirtualScheduler creates a VirtualScheduler whose logical clock
// starts at zero.
func NewVirtualScheduler() *VirtualScheduler {
	return &VirtualScheduler{}
}

func (v *VirtualScheduler) Now() int64 { return v.now }

func (v *VirtualScheduler) Asap(task func()) Token {
	return v.Delay(task, 0)
}

func (v *VirtualScheduler) Delay(task func(), ms int64) Token {
	if ms < 0 {
		ms = 0
	}
	v.seq++
	it := &virtualItem{fn: task, deadline: v.now + ms, seq: v.seq}
	heap.Push(&v.timers, it)
	return it
}

func (v *VirtualScheduler) Cancel(token Token) {
	cancelToken(token)
}

// Tick runs every task currently due at the scheduler's logical time
// (without advancing it), returning the number of tasks run.
func (v *VirtualScheduler) Tick() int {
	ran := 0
	for v.timers.Len() > 0 {
		top := v.timers[0]
		if top.cancelled {
			heap.Pop(&v.timers)
			continue
		}
		if top.deadline > v.now {
			break
		}
		heap.Pop(&v.timers)
		top.fn()
		ran++
	}
	return ran
}

// Advance moves the logical clock forward by ms and runs every task that
// becomes due as a result, including tasks newly scheduled by those runs
// at or before the new time.
func (v *VirtualScheduler) Advance(ms int64) {
	target := v.now + ms
	for {
		next := v.nextDeadline()
		if next < 0 || next > target {
			break
		}
		v.now = next
		v.Tick()
	}
	v.now = target
}

// Drain runs Tick repeatedly, advancing the logical clock to each
// remaining timer's deadline in turn, until no pending timers remain.
// Used by UnsafeExecuteSync to run a fiber to completion.
func (v *VirtualScheduler) Drain() {
	for {
		v.Tick()
		next := v.nextDeadline()
		if next < 0 {
			return
		}
		v.now = next
	}
}

// Pending reports whether any non-cancelled timer remains queued,
// discarding cancelled timers it finds at the head of the heap.
func (v *VirtualScheduler) Pending() bool {
	for v.timers.Len() > 0 {
		if !v.timers[0].cancelled {
			return true
		}
		heap.Pop(&v.timers)
	}
	return false
}

func (v *VirtualScheduler) nextDeadline() int64 {
	for v.timers.Len() > 0 {
		if v.timers[0].cancelled {
			heap.Pop(&v.timers)
			continue
		}
		return v.timers[0].deadline
	}
	return -1
}
