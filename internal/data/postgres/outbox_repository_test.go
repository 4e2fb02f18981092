package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/transfer-pipeline/internal/domain/outbox"
	"github.com/corebank/transfer-pipeline/internal/domain/shared"
)

func testOutboxEvent() *outbox.Event {
	return &outbox.Event{
		EventID:       uuid.New(),
		AggregateType: shared.TransactionTypeTransfer,
		AggregateID:   uuid.New(),
		EventType:     outbox.EventTypeTransferCompleted,
		Payload:       json.RawMessage(`{"transaction_id":"x"}`),
		Status:        shared.OutboxStatusNew,
		CreatedAt:     time.Now(),
	}
}

func TestOutboxRepository_Stage(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}
	event := testOutboxEvent()

	query := `
		INSERT INTO outbox_events \(event_id, aggregate_type, aggregate_id, event_type, payload, status, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\)
		RETURNING id
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(event.EventID, event.AggregateType, event.AggregateID, event.EventType, event.Payload, event.Status, event.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

		err := repo.Stage(ctx, event)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), event.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectQuery(query).
			WithArgs(event.EventID, event.AggregateType, event.AggregateID, event.EventType, event.Payload, event.Status, event.CreatedAt).
			WillReturnError(expectedErr)

		err := repo.Stage(ctx, event)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to stage outbox event")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_GetNew(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}

	query := `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, payload, status, created_at
		FROM outbox_events
		WHERE status = \$1
		ORDER BY created_at ASC
		LIMIT \$2
		FOR UPDATE SKIP LOCKED
	`

	t.Run("returns batch in order", func(t *testing.T) {
		first := testOutboxEvent()
		first.ID = 1
		second := testOutboxEvent()
		second.ID = 2
		second.CreatedAt = first.CreatedAt.Add(time.Second)

		rows := pgxmock.NewRows([]string{"id", "event_id", "aggregate_type", "aggregate_id", "event_type", "payload", "status", "created_at"}).
			AddRow(first.ID, first.EventID, first.AggregateType, first.AggregateID, first.EventType, first.Payload, first.Status, first.CreatedAt).
			AddRow(second.ID, second.EventID, second.AggregateType, second.AggregateID, second.EventType, second.Payload, second.Status, second.CreatedAt)
		mock.ExpectQuery(query).WithArgs(shared.OutboxStatusNew, 10).WillReturnRows(rows)

		events, err := repo.GetNew(ctx, 10)
		assert.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, int64(1), events[0].ID)
		assert.Equal(t, int64(2), events[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "event_id", "aggregate_type", "aggregate_id", "event_type", "payload", "status", "created_at"})
		mock.ExpectQuery(query).WithArgs(shared.OutboxStatusNew, 10).WillReturnRows(rows)

		events, err := repo.GetNew(ctx, 10)
		assert.NoError(t, err)
		assert.Empty(t, events)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_MarkSent(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: logger}

	query := `
		UPDATE outbox_events
		SET status = \$1
		WHERE id = \$2
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(shared.OutboxStatusSent, int64(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.MarkSent(ctx, 7)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(shared.OutboxStatusSent, int64(99)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.MarkSent(ctx, 99)
		assert.Error(t, err)
		var notFoundErr outbox.ErrEventNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, int64(99), notFoundErr.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
