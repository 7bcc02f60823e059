package feed

import (
	"sync"

	"github.com/roach88/cds/internal/model"
)

// queue is a thread-safe unbounded FIFO of objects waiting to be applied.
//
// Producers may enqueue from any goroutine; the Ingester's Run loop is the
// only consumer. The signal channel (buffer 1) lets the consumer wait
// together with a context.
type queue struct {
	mu     sync.Mutex
	items  []model.Object
	closed bool
	signal chan struct{}
}

func newQueue() *queue {
	return &queue{
		items:  make([]model.Object, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// enqueue appends obj. It returns false once the queue is closed.
func (q *queue) enqueue(obj model.Object) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, obj)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// tryDequeue pops the front object without blocking.
func (q *queue) tryDequeue() (model.Object, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	obj := q.items[0]
	// Release the slot so the backing array does not pin the object.
	q.items[0] = nil
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return obj, true
}

// drained reports whether the queue is closed and empty.
func (q *queue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.items) == 0
}

func (q *queue) wait() <-chan struct{} {
	return q.signal
}

func (q *queue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// close stops further enqueues and wakes the consumer.
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
