package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricOpts holds options for creating metrics
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

// Counter wraps an OTel counter for easier use
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new counter metric
func NewCounter(opts MetricOpts) (*Counter, error) {
	meter := GetMeter()
	counter, err := meter.Int64Counter(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Counter{counter: counter}, nil
}

// Add increments the counter by the given value
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// PassMetrics holds the metrics emitted by the pass workflow
type PassMetrics struct {
	// Transitions counts pass lifecycle transitions by target status
	Transitions *Counter
	// EventsPublished counts notification events handed to the broker
	EventsPublished *Counter
	// PublishFailures counts events dropped because the broker was unavailable
	PublishFailures *Counter
}

// NewPassMetrics creates the pass workflow metric set
func NewPassMetrics() (*PassMetrics, error) {
	transitions, err := NewCounter(MetricOpts{
		Name:        "visitor_pass.transitions",
		Description: "Number of pass lifecycle transitions",
		Unit:        "{transition}",
	})
	if err != nil {
		return nil, err
	}

	published, err := NewCounter(MetricOpts{
		Name:        "visitor_pass.events_published",
		Description: "Number of notification events published",
		Unit:        "{event}",
	})
	if err != nil {
		return nil, err
	}

	failures, err := NewCounter(MetricOpts{
		Name:        "visitor_pass.publish_failures",
		Description: "Number of notification events dropped on publish failure",
		Unit:        "{event}",
	})
	if err != nil {
		return nil, err
	}

	return &PassMetrics{
		Transitions:     transitions,
		EventsPublished: published,
		PublishFailures: failures,
	}, nil
}

// RecordTransition records a completed transition to the given status
func (m *PassMetrics) RecordTransition(ctx context.Context, status string) {
	if m == nil || m.Transitions == nil {
		return
	}
	m.Transitions.Inc(ctx, attribute.String("status", status))
}
