package testutil

import (
	"sync"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
)

// Event is one delivery seen by a Recorder.
type Event struct {
	Key   string
	Delta model.Delta
}

// Recorder is a contest listener that records every delivery.
//
// Thread-safety: safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	objs   []model.Object
}

// ContestChanged implements contest.Listener.
func (r *Recorder) ContestChanged(_ *contest.Contest, obj model.Object, delta model.Delta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Key: model.KeyOf(obj).String(), Delta: delta})
	r.objs = append(r.objs, obj)
	return nil
}

// Events returns a copy of the recorded deliveries.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Keys returns the recorded object keys in delivery order.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Key
	}
	return out
}

// Objects returns the recorded objects in delivery order.
func (r *Recorder) Objects() []model.Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Object(nil), r.objs...)
}
