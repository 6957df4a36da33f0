package queue

import (
	"context"
	"errors"
	"sync"
)

// PublishedEvent records one publish call made against a MemoryPublisher
type PublishedEvent struct {
	Topic string
	Event Event
}

// MemoryPublisher is an in-memory implementation of Publisher for testing.
// Set Fail to make every publish return an error.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
	Fail   bool
}

// NewMemoryPublisher creates a new in-memory publisher
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Publish records the event, or fails when Fail is set
func (p *MemoryPublisher) Publish(ctx context.Context, topic string, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Fail {
		return errors.New("publish failed")
	}
	p.events = append(p.events, PublishedEvent{Topic: topic, Event: event})
	return nil
}

// Close is a no-op
func (p *MemoryPublisher) Close() {}

// Events returns a snapshot of recorded publishes in order
func (p *MemoryPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]PublishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventsForTopic returns recorded publishes for one topic in order
func (p *MemoryPublisher) EventsForTopic(topic string) []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]PublishedEvent, 0)
	for _, e := range p.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}
