package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/transfer-pipeline/internal/domain/shared"
	"github.com/corebank/transfer-pipeline/internal/domain/transfer"
)

// Event stores a completed-transfer fact for reliable publishing. It is
// staged in the same database transaction that marks the transfer SUCCESS,
// which is what makes the hand-off to Kafka crash-safe.
type Event struct {
	ID            int64                  `json:"id"`
	EventID       uuid.UUID              `json:"event_id"` // Unique, for dedup at the bus layer
	AggregateType shared.TransactionType `json:"aggregate_type"`
	AggregateID   uuid.UUID              `json:"aggregate_id"` // Transfer record id, used as the Kafka key
	EventType     string                 `json:"event_type"`
	Payload       json.RawMessage        `json:"payload"`
	Status        shared.OutboxStatus    `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
}

// Event type strings recorded per operation
const (
	EventTypeTransferCompleted = "TRANSFER_COMPLETED"
	EventTypeDepositCompleted  = "DEPOSIT_COMPLETED"
	EventTypeDispenseCompleted = "DISPENSE_COMPLETED"
)

// EventTypeFor maps a transaction type to its completed-event type string
func EventTypeFor(txType shared.TransactionType) string {
	switch txType {
	case shared.TransactionTypeDeposit:
		return EventTypeDepositCompleted
	case shared.TransactionTypeDispense:
		return EventTypeDispenseCompleted
	default:
		return EventTypeTransferCompleted
	}
}

// NewEvent builds a NEW outbox event from a successful transfer record
func NewEvent(record *transfer.Record) (*Event, error) {
	payload, err := json.Marshal(record.CompletedEvent())
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:       uuid.New(),
		AggregateType: record.Type,
		AggregateID:   record.ID,
		EventType:     EventTypeFor(record.Type),
		Payload:       payload,
		Status:        shared.OutboxStatusNew,
		CreatedAt:     time.Now(),
	}, nil
}

// CompletedEvent extracts the transaction-completed event from the payload
func (e *Event) CompletedEvent() (*shared.TransactionCompletedEvent, error) {
	var event shared.TransactionCompletedEvent
	if err := json.Unmarshal(e.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
