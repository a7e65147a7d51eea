package realtime

import (
	"context"
	"sync"
)

// Recorder is a Publisher that keeps every event in memory. Handler tests
// use it to assert what was emitted.
type Recorder struct {
	mu     sync.Mutex
	events []Frame
}

func (r *Recorder) Publish(_ context.Context, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Frame{Event: event, Data: data})
}

// Events returns a copy of the recorded frames.
func (r *Recorder) Events() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the recorded event names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Event
	}
	return out
}
