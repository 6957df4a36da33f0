package queue

import "context"

// Event is a publishable message carrying its own partition key
type Event interface {
	Key() string
}

// Publisher sends lifecycle events to downstream consumers. Publishing is
// best-effort: callers treat failures as non-fatal and must not roll back
// committed state when a publish fails.
type Publisher interface {
	// Publish sends one event to the given topic
	Publish(ctx context.Context, topic string, event Event) error
	// Close flushes buffered messages and releases resources
	Close()
}
