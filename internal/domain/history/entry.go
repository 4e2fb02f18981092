package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/transfer-pipeline/internal/domain/shared"
)

// Entry is the read-optimized projection of one completed transfer.
// TransactionID carries a unique index, so redelivered events cannot
// materialize twice.
type Entry struct {
	TransactionID     uuid.UUID              `json:"transaction_id" bson:"transaction_id"`
	FromUserID        int64                  `json:"from_user_id" bson:"from_user_id"`
	ToUserID          int64                  `json:"to_user_id" bson:"to_user_id"`
	FromAccountNumber string                 `json:"from_account_number" bson:"from_account_number"`
	ToAccountNumber   string                 `json:"to_account_number" bson:"to_account_number"`
	Amount            decimal.Decimal        `json:"amount" bson:"amount"`
	Type              shared.TransactionType `json:"transaction_type" bson:"transaction_type"`
	Status            shared.TransferStatus  `json:"status" bson:"status"`
	Message           string                 `json:"message,omitempty" bson:"message,omitempty"`
	TransactionTime   time.Time              `json:"transaction_time" bson:"transaction_time"`
	RecordedAt        time.Time              `json:"recorded_at" bson:"recorded_at"`
}

// FromEvent maps a transaction-completed event to a history entry
func FromEvent(event *shared.TransactionCompletedEvent) *Entry {
	return &Entry{
		TransactionID:     event.TransactionID,
		FromUserID:        event.FromUserID,
		ToUserID:          event.ToUserID,
		FromAccountNumber: event.FromAccountNumber,
		ToAccountNumber:   event.ToAccountNumber,
		Amount:            event.Amount,
		Type:              event.Type,
		Status:            event.Status,
		Message:           event.Message,
		TransactionTime:   event.TransactionTime,
		RecordedAt:        time.Now(),
	}
}
