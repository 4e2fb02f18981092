package outbox

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/transfer-pipeline/internal/domain/shared"
	"github.com/corebank/transfer-pipeline/internal/domain/transfer"
)

func TestNewEvent(t *testing.T) {
	rec := transfer.NewRecord(shared.TransactionTypeTransfer, 1, 2, "ACC-001", "ACC-002", decimal.NewFromInt(250), "rent")

	event, err := NewEvent(rec)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.EventID)
	assert.Equal(t, rec.ID, event.AggregateID)
	assert.Equal(t, shared.TransactionTypeTransfer, event.AggregateType)
	assert.Equal(t, EventTypeTransferCompleted, event.EventType)
	assert.Equal(t, shared.OutboxStatusNew, event.Status)

	// Payload round-trips to the completed event with SUCCESS status
	completed, err := event.CompletedEvent()
	require.NoError(t, err)
	assert.Equal(t, rec.ID, completed.TransactionID)
	assert.Equal(t, shared.TransferStatusSuccess, completed.Status)
	assert.True(t, completed.Amount.Equal(rec.Amount))
	assert.Equal(t, "ACC-001", completed.FromAccountNumber)
	assert.Equal(t, "ACC-002", completed.ToAccountNumber)
}

func TestEventTypeFor(t *testing.T) {
	assert.Equal(t, EventTypeDepositCompleted, EventTypeFor(shared.TransactionTypeDeposit))
	assert.Equal(t, EventTypeDispenseCompleted, EventTypeFor(shared.TransactionTypeDispense))
	assert.Equal(t, EventTypeTransferCompleted, EventTypeFor(shared.TransactionTypeTransfer))
}
