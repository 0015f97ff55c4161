package eventmock

import (
	"context"
	"sync"

	"p2plending/internal/domain/loan"
)

// Recorder keeps every published event. Err, when set, is returned from
// Publish after recording.
type Recorder struct {
	mu     sync.Mutex
	events []loan.Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e loan.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.Err
}

func (r *Recorder) Events() []loan.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]loan.Event(nil), r.events...)
}

func (r *Recorder) Topics() []loan.Topic {
	out := []loan.Topic{}
	for _, e := range r.Events() {
		out = append(out, e.Topic)
	}
	return out
}
