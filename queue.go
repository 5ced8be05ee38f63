package qio

import "sync"

// queueTaker is a TakeQueue call currently blocked waiting for a value;
// like awaitWaiter, it carries its own Scheduler so OfferQueue can wake
// it via Asap without needing one of its own.
type queueTaker[A any] struct {
	resolve func(A)
	sched   Scheduler
	live    bool
}

// queueOfferer is an OfferQueue call currently blocked because the
// queue was at capacity with no waiting taker.
type queueOfferer[A any] struct {
	value   A
	resolve func(bool)
	sched   Scheduler
	live    bool
}

// Queue[A] is a bounded FIFO with direct taker/offerer handoff: offering
// to a queue with a waiting taker bypasses the buffer entirely, and
// symmetrically for taking from a queue with a waiting offerer. A
// capacity of 0 makes it a pure rendezvous channel.
type Queue[A any] struct {
	mu       sync.Mutex
	capacity int
	items    []A
	takers   []*queueTaker[A]
	offerers []*queueOfferer[A]
}

// NewQueue creates an empty Queue buffering up to capacity items before
// an Offer call blocks. A negative capacity is treated as zero.
func NewQueue[A any](capacity int) *Queue[A] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[A]{capacity: capacity}
}

// OfferQueue returns an effect that places v on q, succeeding with true
// once it has been handed to a waiting taker, buffered, or itself
// promoted off the offer-waiters list by a later Take.
func OfferQueue[R, E, A any](q *Queue[A], v A) Effect[R, E, bool] {
	return From(func(_ R, _ func(E), resolve func(bool), sched Scheduler) Token {
		q.mu.Lock()

		for len(q.takers) > 0 {
			t := q.takers[0]
			q.takers = q.takers[1:]
			if !t.live {
				continue
			}
			q.mu.Unlock()
			t.sched.Asap(func() {
				if t.live {
					t.resolve(v)
				}
			})
			resolve(true)
			return noopToken{}
		}

		if len(q.items) < q.capacity {
			q.items = append(q.items, v)
			q.mu.Unlock()
			resolve(true)
			return noopToken{}
		}

		o := &queueOfferer[A]{value: v, resolve: resolve, sched: sched, live: true}
		q.offerers = append(q.offerers, o)
		q.mu.Unlock()

		return tokenFunc(func() {
			q.mu.Lock()
			o.live = false
			q.mu.Unlock()
		})
	})
}

// TakeQueue returns an effect that succeeds with the next value offered
// to q, in FIFO order, suspending if none is currently available.
func TakeQueue[R, E, A any](q *Queue[A]) Effect[R, E, A] {
	return From(func(_ R, _ func(E), resolve func(A), sched Scheduler) Token {
		q.mu.Lock()

		if len(q.items) > 0 {
			v := q.items[0]
			q.items = q.items[1:]
			for len(q.offerers) > 0 {
				o := q.offerers[0]
				q.offerers = q.offerers[1:]
				if !o.live {
					continue
				}
				q.items = append(q.items, o.value)
				q.mu.Unlock()
				o.sched.Asap(func() {
					if o.live {
						o.resolve(true)
					}
				})
				resolve(v)
				return noopToken{}
			}
			q.mu.Unlock()
			resolve(v)
			return noopToken{}
		}

		for len(q.offerers) > 0 {
			o := q.offerers[0]
			q.offerers = q.offerers[1:]
			if !o.live {
				continue
			}
			q.mu.Unlock()
			o.sched.Asap(func() {
				if o.live {
					o.resolve(true)
				}
			})
			resolve(o.value)
			return noopToken{}
		}

		t := &queueTaker[A]{resolve: resolve, sched: sched, live: true}
		q.takers = append(q.takers, t)
		q.mu.Unlock()

		return tokenFunc(func() {
			q.mu.Lock()
			t.live = false
			q.mu.Unlock()
		})
	})
}
