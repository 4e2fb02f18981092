package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/corebank/transfer-pipeline/internal/config"
	"github.com/corebank/transfer-pipeline/internal/domain/outbox"
	"github.com/corebank/transfer-pipeline/internal/domain/shared"
)

// MockOutboxRepo for testing
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Stage(ctx context.Context, event *outbox.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetNew(ctx context.Context, limit int) ([]*outbox.Event, error) {
	args := m.Called(ctx, limit)
	if events, ok := args.Get(0).([]*outbox.Event); ok {
		return events, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOutboxRepo) MarkSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetByAggregateID(ctx context.Context, aggregateID uuid.UUID) (*outbox.Event, error) {
	args := m.Called(ctx, aggregateID)
	if event, ok := args.Get(0).(*outbox.Event); ok {
		return event, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	m.Called(tx)
	return m
}

// MockProducer for testing
type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testEvent(id int64) *outbox.Event {
	return &outbox.Event{
		ID:            id,
		EventID:       uuid.New(),
		AggregateType: shared.TransactionTypeTransfer,
		AggregateID:   uuid.New(),
		EventType:     outbox.EventTypeTransferCompleted,
		Payload:       json.RawMessage(`{"transaction_id":"x"}`),
		Status:        shared.OutboxStatusNew,
		CreatedAt:     time.Now(),
	}
}

func newTestPublisher(t *testing.T, outboxRepo *MockOutboxRepo, producer *MockProducer) *Publisher {
	t.Helper()
	cfg := &config.OutboxConfig{
		PollingInterval: time.Second,
		BatchSize:       10,
		PublishWorkers:  4,
	}
	p, err := NewPublisher(cfg, outboxRepo, producer, slog.Default())
	require.NoError(t, err)
	return p
}

func TestPublisher_DrainOnce(t *testing.T) {
	t.Run("publishes batch and marks events sent", func(t *testing.T) {
		outboxRepo := &MockOutboxRepo{}
		producer := &MockProducer{}
		p := newTestPublisher(t, outboxRepo, producer)

		event1 := testEvent(1)
		event2 := testEvent(2)

		outboxRepo.On("GetNew", mock.Anything, 10).Return([]*outbox.Event{event1, event2}, nil).Once()
		producer.On("Publish", mock.Anything, event1.AggregateID.String(), []byte(event1.Payload)).Return(nil).Once()
		producer.On("Publish", mock.Anything, event2.AggregateID.String(), []byte(event2.Payload)).Return(nil).Once()
		outboxRepo.On("MarkSent", mock.Anything, int64(1)).Return(nil).Once()
		outboxRepo.On("MarkSent", mock.Anything, int64(2)).Return(nil).Once()

		err := p.drainOnce(context.Background())
		assert.NoError(t, err)

		outboxRepo.AssertExpectations(t)
		producer.AssertExpectations(t)
	})

	t.Run("publish failure leaves event NEW for retry", func(t *testing.T) {
		outboxRepo := &MockOutboxRepo{}
		producer := &MockProducer{}
		p := newTestPublisher(t, outboxRepo, producer)

		event := testEvent(1)

		outboxRepo.On("GetNew", mock.Anything, 10).Return([]*outbox.Event{event}, nil).Once()
		producer.On("Publish", mock.Anything, event.AggregateID.String(), []byte(event.Payload)).Return(errors.New("broker unavailable")).Once()

		err := p.drainOnce(context.Background())
		assert.NoError(t, err)

		// The event stays NEW, so the next tick can retry it
		outboxRepo.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
		producer.AssertExpectations(t)
	})

	t.Run("retry after failure eventually marks sent", func(t *testing.T) {
		outboxRepo := &MockOutboxRepo{}
		producer := &MockProducer{}
		p := newTestPublisher(t, outboxRepo, producer)

		event := testEvent(1)

		// First tick fails, second succeeds
		outboxRepo.On("GetNew", mock.Anything, 10).Return([]*outbox.Event{event}, nil).Twice()
		producer.On("Publish", mock.Anything, event.AggregateID.String(), []byte(event.Payload)).Return(errors.New("broker unavailable")).Once()
		producer.On("Publish", mock.Anything, event.AggregateID.String(), []byte(event.Payload)).Return(nil).Once()
		outboxRepo.On("MarkSent", mock.Anything, int64(1)).Return(nil).Once()

		require.NoError(t, p.drainOnce(context.Background()))
		require.NoError(t, p.drainOnce(context.Background()))

		outboxRepo.AssertExpectations(t)
		producer.AssertExpectations(t)
	})

	t.Run("mark sent failure after confirmed publish is tolerated", func(t *testing.T) {
		outboxRepo := &MockOutboxRepo{}
		producer := &MockProducer{}
		p := newTestPublisher(t, outboxRepo, producer)

		event := testEvent(1)

		outboxRepo.On("GetNew", mock.Anything, 10).Return([]*outbox.Event{event}, nil).Once()
		producer.On("Publish", mock.Anything, event.AggregateID.String(), []byte(event.Payload)).Return(nil).Once()
		outboxRepo.On("MarkSent", mock.Anything, int64(1)).Return(errors.New("db error")).Once()

		// Downstream idempotency absorbs the duplicate publish
		err := p.drainOnce(context.Background())
		assert.NoError(t, err)

		outboxRepo.AssertExpectations(t)
	})

	t.Run("error fetching batch is surfaced", func(t *testing.T) {
		outboxRepo := &MockOutboxRepo{}
		producer := &MockProducer{}
		p := newTestPublisher(t, outboxRepo, producer)

		outboxRepo.On("GetNew", mock.Anything, 10).Return(nil, errors.New("db error")).Once()

		err := p.drainOnce(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get new outbox events")
	})
}
