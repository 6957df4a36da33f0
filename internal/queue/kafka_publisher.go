package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/pkg/logger"
)

// KafkaPublisherConfig holds Kafka publisher settings
type KafkaPublisherConfig struct {
	Brokers        []string
	ClientID       string
	PublishTimeout time.Duration
}

// KafkaPublisher implements Publisher on top of a franz-go client
type KafkaPublisher struct {
	client  *kgo.Client
	timeout time.Duration
}

// NewKafkaPublisher creates a publisher connected to the given brokers
func NewKafkaPublisher(cfg KafkaPublisherConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 3 * time.Second
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &KafkaPublisher{
		client:  client,
		timeout: cfg.PublishTimeout,
	}, nil
}

// Publish sends one event to the given topic, waiting at most the configured
// publish timeout for the broker acknowledgement
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event for topic %s: %w", topic, err)
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(event.Key()),
		Value: payload,
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}

	logger.WithContext(ctx).Debug("published event",
		zap.String("topic", topic),
		zap.String("key", event.Key()),
	)
	return nil
}

// Close flushes buffered messages and releases the client
func (p *KafkaPublisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
