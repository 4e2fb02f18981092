// Package publisher drains the transactional outbox to Kafka. Delivery is
// at-least-once: an event is only marked SENT after the broker confirms the
// write, and any failure leaves it NEW for the next tick.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/corebank/transfer-pipeline/internal/config"
	"github.com/corebank/transfer-pipeline/internal/domain/outbox"
	"github.com/corebank/transfer-pipeline/internal/platform/messaging/producers"
)

// Publisher polls the outbox on a ticker and fans each batch out on a worker
// pool. Every event has a unique Kafka key (the transfer record id), so
// concurrent publishes within a batch cannot reorder any single key.
type Publisher struct {
	outboxRepo   outbox.Repository
	producer     producers.MessagePublisher
	pool         *ants.Pool
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
	draining     atomic.Bool // Single-flight guard across ticks
}

func NewPublisher(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) (*Publisher, error) {
	pool, err := ants.NewPool(cfg.PublishWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to create publish worker pool: %w", err)
	}

	return &Publisher{
		outboxRepo:   outboxRepo,
		producer:     producer,
		pool:         pool,
		logger:       logger,
		pollInterval: cfg.PollingInterval,
		batchSize:    cfg.BatchSize,
	}, nil
}

// Start begins polling until context is canceled
func (p *Publisher) Start(ctx context.Context) {
	p.logger.Info("Starting outbox publisher",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	defer p.pool.Release()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox publisher stopping due to context cancellation.")
			return
		case <-ticker.C:
			if !p.draining.CompareAndSwap(false, true) {
				p.logger.Debug("Previous outbox batch still in flight, skipping tick")
				continue
			}
			if err := p.drainOnce(ctx); err != nil {
				p.logger.Error("Error draining outbox batch", "error", err)
			}
			p.draining.Store(false)
		}
	}
}

// drainOnce fetches one batch of NEW events and publishes them concurrently
func (p *Publisher) drainOnce(ctx context.Context) error {
	events, err := p.outboxRepo.GetNew(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get new outbox events: %w", err)
	}

	if len(events) == 0 {
		p.logger.Debug("No new outbox events found.")
		return nil
	}

	p.logger.Info("Fetched new outbox events", "count", len(events))

	var wg sync.WaitGroup
	for _, event := range events {
		event := event
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			p.publishOne(ctx, event)
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Error("Failed to submit outbox event to worker pool",
				"outbox_id", event.ID, "error", submitErr)
		}
	}
	wg.Wait()

	return nil
}

// publishOne publishes a single event and marks it SENT on confirmation.
// A publish failure leaves the event NEW, so the next tick retries it; a
// MarkSent failure after a confirmed publish means the event will be sent
// again, which the history projector's dedup absorbs.
func (p *Publisher) publishOne(ctx context.Context, event *outbox.Event) {
	key := event.AggregateID.String()

	if err := p.producer.Publish(ctx, key, event.Payload); err != nil {
		p.logger.Error("Failed to publish outbox event, leaving it NEW for retry",
			"outbox_id", event.ID,
			"event_id", event.EventID.String(),
			"error", err,
		)
		return
	}

	if err := p.outboxRepo.MarkSent(ctx, event.ID); err != nil {
		p.logger.Error("Failed to mark outbox event as sent after confirmed publish",
			"outbox_id", event.ID,
			"event_id", event.EventID.String(),
			"error", err,
		)
		return
	}

	p.logger.Info("Published outbox event",
		"outbox_id", event.ID,
		"event_id", event.EventID.String(),
		"event_type", event.EventType,
	)
}
