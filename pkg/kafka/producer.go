package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/etcsc/warehouse/pkg/metrics"
	"github.com/etcsc/warehouse/pkg/tracing"
)

// Producer publishes warehouse lifecycle events
type Producer struct {
	writer      *kafka.Writer
	logger      ectologger.Logger
	topicPrefix string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	TopicPrefix  string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer:      writer,
		logger:      logger,
		topicPrefix: cfg.TopicPrefix,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// LifecycleEvent is one warehouse lifecycle change published downstream
type LifecycleEvent struct {
	EventType string          `json:"event_type"`
	Key       string          `json:"key"`
	Actor     string          `json:"actor,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publish publishes a lifecycle event to <prefix>.<topic>
func (p *Producer) Publish(ctx context.Context, topic string, event *LifecycleEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.Publish")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	fullTopic := topic
	if p.topicPrefix != "" {
		fullTopic = p.topicPrefix + "." + topic
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: fullTopic,
		Key:   []byte(event.Key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "traceparent", Value: []byte(tracing.GetTraceParent(ctx))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(fullTopic, "error").Inc()
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish lifecycle event")
		return err
	}

	metrics.EventsPublishedTotal.WithLabelValues(fullTopic, "ok").Inc()
	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"topic":      fullTopic,
		"key":        event.Key,
	}).Debug("Published lifecycle event")

	return nil
}
