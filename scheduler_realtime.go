package qio

import (
	"container/heap"
	"sync"
	"time"
)

// RealtimeScheduler is the wall-clock production Scheduler. It drives its
// queue from a single background goroutine, so every task it runs still
// observes single-threaded, cooperative semantics relative to every other
// task it runs — there is no true parallelism, only real elapsed time
// standing in for the logical clock.
//
// The pending-timer structure is a container/heap min-heap keyed by
// deadline, the same shape as the event-loop teacher's timerHeap; Asap
// tasks are a plain FIFO slice drained ahead of any due timer in each
// wake cycle, since "now" work always precedes delayed work.
type RealtimeScheduler struct {
	mu     sync.Mutex
	epoch  time.Time
	seq    uint64
	asap   []*asapItem
	timers timerHeap
	wake   chan struct{}
	stop   chan struct{}
}

type asapItem struct {
	fn        func()
	cancelled bool
}

func (a *asapItem) Cancel() { a.cancelled = true }

type timerItem struct {
	fn        func()
	deadline  time.Time
	seq       uint64
	cancelled bool
	index     int
}

type timerHeap []*timerItem

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *timerHeap) Push(x any) {
	it := x.(*timerItem)
	it.index = len(*h)
	*h = append(*h, it)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// NewRealtimeScheduler creates and starts a wall-clock Scheduler.
func NewRealtimeScheduler() *RealtimeScheduler {
	s := &RealtimeScheduler{
		epoch: time.Now(),
		wake:  make(chan struct{}, 1),
		stop:  make(chan struct{}),
	}
	go s.loop()
	return s
}

// Close stops the scheduler's background goroutine. Pending tasks are
// discarded. Close is not part of the Scheduler interface since a test
// scheduler has no goroutine to stop.
func (s *RealtimeScheduler) Close() {
	close(s.stop)
}

func (s *RealtimeScheduler) Now() int64 {
	return time.Since(s.epoch).Milliseconds()
}

func (s *RealtimeScheduler) Asap(task func()) Token {
	it := &asapItem{fn: task}
	s.mu.Lock()
	s.asap = append(s.asap, it)
	s.mu.Unlock()
	s.notify()
	return it
}

func (s *RealtimeScheduler) Delay(task func(), ms int64) Token {
	if ms < 0 {
		ms = 0
	}
	it := &timerItem{fn: task, deadline: time.Now().Add(time.Duration(ms) * time.Millisecond)}
	s.mu.Lock()
	s.seq++
	it.seq = s.seq
	heap.Push(&s.timers, it)
	s.mu.Unlock()
	s.notify()
	return it
}

func (s *RealtimeScheduler) Cancel(token Token) {
	cancelToken(token)
}

func (s *RealtimeScheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *RealtimeScheduler) loop() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		due := s.drainDue()
		for _, fn := range due {
			fn()
		}

		wait := s.nextWait()
		timer.Reset(wait)

		select {
		case <-s.stop:
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

// drainDue pops every Asap task and every timer whose deadline has
// passed, returning their functions to run outside the lock.
func (s *RealtimeScheduler) drainDue() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []func()

	for _, it := range s.asap {
		if !it.cancelled {
			due = append(due, it.fn)
		}
	}
	s.asap = s.asap[:0]

	now := time.Now()
	for s.timers.Len() > 0 {
		top := s.timers[0]
		if top.cancelled {
			heap.Pop(&s.timers)
			continue
		}
		if top.deadline.After(now) {
			break
		}
		heap.Pop(&s.timers)
		due = append(due, top.fn)
	}

	return due
}

func (s *RealtimeScheduler) nextWait() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.timers.Len() > 0 && s.timers[0].cancelled {
		heap.Pop(&s.timers)
	}
	if s.timers.Len() == 0 {
		return time.Hour
	}
	wait := time.Until(s.timers[0].deadline)
	if wait < 0 {
		return 0
	}
	return wait
}
