package testutil

import (
	"context"
	"sync"

	"github.com/thenoetrevino/propboard/internal/events"
	"github.com/thenoetrevino/propboard/internal/types"
)

// RecordingPublisher is an in-memory events.EventPublisher that keeps every
// sent event. Set Err to make SendEvent fail.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	Err    error
}

var _ events.EventPublisher = (*RecordingPublisher)(nil)

func (p *RecordingPublisher) Connect(context.Context) error { return nil }
func (p *RecordingPublisher) Subscribe(types.BoardID) error { return nil }
func (p *RecordingPublisher) Close() error                  { return nil }

// Listen returns a closed channel
func (p *RecordingPublisher) Listen(context.Context) (<-chan events.Event, error) {
	ch := make(chan events.Event)
	close(ch)
	return ch, nil
}

// SendEvent records the event
func (p *RecordingPublisher) SendEvent(e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, e)
	return nil
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// Reset forgets recorded events
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
