// Package projector consumes transaction-completed events and materializes
// them into the history store. Processing is idempotent on the business
// transaction id, so the bus may deliver any event more than once.
package projector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corebank/transfer-pipeline/internal/domain/history"
	"github.com/corebank/transfer-pipeline/internal/domain/shared"
	"github.com/corebank/transfer-pipeline/internal/platform/messaging/consumers"
	"github.com/corebank/transfer-pipeline/internal/platform/messaging/producers"
)

// Projector turns completed-transfer events into history entries
type Projector struct {
	historyRepo history.Repository
	dlqProducer producers.DeadLetterPublisher
	logger      *slog.Logger
}

// NewProjector creates a new history projector. dlqProducer may be nil when
// the DLQ is disabled; unmarshalable messages are then dropped with a log.
func NewProjector(logger *slog.Logger, historyRepo history.Repository, dlqProducer producers.DeadLetterPublisher) *Projector {
	return &Projector{
		historyRepo: historyRepo,
		dlqProducer: dlqProducer,
		logger:      logger,
	}
}

// Handle processes one message from the completed-events topic. Returning nil
// commits the offset; returning an error leaves it uncommitted so the bus
// redelivers the message.
func (p *Projector) Handle(ctx context.Context, key []byte, value []byte) error {
	var event shared.TransactionCompletedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		// A payload that cannot be parsed will never succeed on redelivery;
		// route it to the DLQ and ack so it does not poison the partition.
		p.logger.Error("Failed to unmarshal completed event, routing to DLQ",
			"key", string(key),
			"error", err,
		)
		if p.dlqProducer != nil {
			if dlqErr := p.dlqProducer.PublishToDLQ(ctx, string(key), value, "unmarshal failed: "+err.Error()); dlqErr != nil {
				return fmt.Errorf("failed to route bad payload to DLQ: %w", dlqErr)
			}
		}
		return nil
	}

	exists, err := p.historyRepo.ExistsByTransactionID(ctx, event.TransactionID)
	if err != nil {
		return fmt.Errorf("failed to check history for transaction %s: %w", event.TransactionID, err)
	}
	if exists {
		p.logger.Debug("History entry already recorded, skipping",
			"transaction_id", event.TransactionID.String(),
		)
		return nil
	}

	entry := history.FromEvent(&event)
	if err := p.historyRepo.Create(ctx, entry); err != nil {
		// A concurrent redelivery can insert between the exists check and
		// this insert; the unique index turns that race into a no-op.
		if errors.Is(err, history.ErrDuplicateEntry{}) {
			p.logger.Debug("History entry inserted concurrently, skipping",
				"transaction_id", event.TransactionID.String(),
			)
			return nil
		}
		return fmt.Errorf("failed to create history entry for transaction %s: %w", event.TransactionID, err)
	}

	p.logger.Info("Recorded history entry",
		"transaction_id", event.TransactionID.String(),
		"transaction_type", string(event.Type),
	)
	return nil
}

// Run subscribes the projector to the completed-events topic
func (p *Projector) Run(ctx context.Context, consumer consumers.Consumer, topic, groupID string) error {
	return consumer.Subscribe(ctx, topic, groupID, p.Handle)
}
