package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/corebank/transfer-pipeline/internal/domain/outbox"
	"github.com/corebank/transfer-pipeline/internal/domain/shared"
	"github.com/corebank/transfer-pipeline/internal/platform/persistence"
)

// OutboxRepository implements the outbox.Repository interface for PostgreSQL
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOutboxRepository creates a new PostgreSQL outbox repository
func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) outbox.Repository {
	return &OutboxRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations.
// This ensures event staging is atomic with the transfer status update.
func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Stage stores a new outbox event in NEW status. The event will be picked up
// by the outbox relay for publishing.
func (r *OutboxRepository) Stage(ctx context.Context, event *outbox.Event) error {
	query := `
		INSERT INTO outbox_events (event_id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		event.EventID,
		event.AggregateType,
		event.AggregateID,
		event.EventType,
		event.Payload,
		event.Status,
		event.CreatedAt,
	).Scan(&event.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return outbox.ErrDuplicateEvent{EventID: event.EventID}
		}
		r.logger.Error("Failed to stage outbox event",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to stage outbox event: %w", err)
	}

	return nil
}

// GetNew retrieves a batch of NEW outbox events ordered by creation time.
// SKIP LOCKED only skips rows locked by an in-flight success commit; the
// statement runs outside a transaction, so it is not a cross-instance claim.
// The pipeline assumes a single relay per outbox.
func (r *OutboxRepository) GetNew(ctx context.Context, limit int) ([]*outbox.Event, error) {
	query := `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, payload, status, created_at
		FROM outbox_events
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.querier.Query(ctx, query, shared.OutboxStatusNew, limit)
	if err != nil {
		r.logger.Error("Failed to get new outbox events", "error", err)
		return nil, fmt.Errorf("failed to get new outbox events: %w", err)
	}
	defer rows.Close()

	var events []*outbox.Event
	for rows.Next() {
		var event outbox.Event
		err := rows.Scan(
			&event.ID,
			&event.EventID,
			&event.AggregateType,
			&event.AggregateID,
			&event.EventType,
			&event.Payload,
			&event.Status,
			&event.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan outbox event", "error", err)
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over outbox events", "error", err)
		return nil, fmt.Errorf("error iterating over outbox events: %w", err)
	}

	return events, nil
}

// MarkSent flips an event to SENT after a confirmed publish. Events are
// retained for audit; nothing is deleted.
func (r *OutboxRepository) MarkSent(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, shared.OutboxStatusSent, id)
	if err != nil {
		r.logger.Error("Failed to mark outbox event as sent", "id", id, "error", err)
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}

	if result.RowsAffected() == 0 {
		return outbox.ErrEventNotFound{ID: id}
	}

	return nil
}

// GetByAggregateID retrieves the event staged for a transfer record
func (r *OutboxRepository) GetByAggregateID(ctx context.Context, aggregateID uuid.UUID) (*outbox.Event, error) {
	query := `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, payload, status, created_at
		FROM outbox_events
		WHERE aggregate_id = $1
	`

	var event outbox.Event
	err := r.querier.QueryRow(ctx, query, aggregateID).Scan(
		&event.ID,
		&event.EventID,
		&event.AggregateType,
		&event.AggregateID,
		&event.EventType,
		&event.Payload,
		&event.Status,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, outbox.ErrEventNotFound{ID: 0}
		}
		r.logger.Error("Failed to get outbox event by aggregate ID",
			"aggregate_id", aggregateID.String(),
			"error", err,
		)
		return nil, fmt.Errorf("failed to get outbox event by aggregate ID: %w", err)
	}

	return &event, nil
}
