package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/corebank/transfer-pipeline/internal/config"
)

// CompletedEventProducer publishes transaction-completed events drained from
// the outbox. Writes are synchronous with RequiredAcks=all: the relay only
// marks an outbox event SENT after the broker has confirmed the write, so a
// failed publish leaves the event NEW for the next poll.
type CompletedEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewCompletedEventProducer creates the outbox relay producer and ensures the
// completed-events topic exists.
func NewCompletedEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*CompletedEventProducer, error) {
	if cfg.CompletedTopic == "" {
		return nil, fmt.Errorf("kafka completed-events topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for completed-event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.CompletedTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists for completed-event producer: %w", cfg.CompletedTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.CompletedTopic,
		Balancer:     &kafka.Hash{}, // Same key lands on the same partition
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &CompletedEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.CompletedTopic,
	}, nil
}

// Publish writes one event keyed by the transfer record id. The payload is
// the outbox event's already-serialized JSON, published verbatim.
func (p *CompletedEventProducer) Publish(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish completed event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish completed event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published completed event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *CompletedEventProducer) Close() error {
	p.logger.Info("Closing completed-event Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
