package contest

import (
	"sync"
	"sync/atomic"

	"github.com/roach88/cds/internal/model"
)

// Clock is a monotonic logical clock. Each accepted mutation draws one
// sequence number; deliveries happen in sequence order.
//
// Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// delivery is one pending notification pass: either a live change for the
// listeners registered when it was accepted, or a history replay for one
// new listener.
type delivery struct {
	seq     int64
	targets []*registration
	obj     model.Object
	delta   model.Delta
	replay  []replayed
}

type replayed struct {
	obj   model.Object
	delta model.Delta
}

// outbox is the FIFO of deliveries in sequence order. At most one caller
// drains it at a time; others only enqueue. A listener that adds to the
// contest it is observing therefore never waits on itself: its change is
// delivered by the active drainer once the current delivery returns.
type outbox struct {
	mu       sync.Mutex
	items    []delivery
	draining bool
}

// push appends d. Called with the contest's mu held so queue order matches
// mutation order.
func (o *outbox) push(d delivery) {
	o.mu.Lock()
	o.items = append(o.items, d)
	o.mu.Unlock()
}

// claim makes the caller the drainer. It returns false when another
// caller, possibly further up the same stack, is already draining.
func (o *outbox) claim() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.draining {
		return false
	}
	o.draining = true
	return true
}

// next pops the front delivery. When the outbox is empty it gives up the
// drainer role in the same critical section, so a concurrent push is
// never stranded.
func (o *outbox) next() (delivery, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.items) == 0 {
		o.draining = false
		return delivery{}, false
	}
	d := o.items[0]
	o.items[0] = delivery{}
	if len(o.items) == 1 {
		o.items = o.items[:0]
	} else {
		o.items = o.items[1:]
	}
	return d, true
}

func (o *outbox) pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.items)
}
