package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionCompletedEvent is the Kafka message describing a completed
// transfer. It is staged in the outbox as the event payload and consumed by
// the history projector. Keyed by TransactionID on the wire so redeliveries
// of one transaction land on one partition.
type TransactionCompletedEvent struct {
	TransactionID     uuid.UUID       `json:"transaction_id"`
	FromUserID        int64           `json:"from_user_id"`
	ToUserID          int64           `json:"to_user_id"`
	FromAccountNumber string          `json:"from_account_number"`
	ToAccountNumber   string          `json:"to_account_number"`
	Amount            decimal.Decimal `json:"amount"`
	Message           string          `json:"message,omitempty"`
	Status            TransferStatus  `json:"status"`
	Type              TransactionType `json:"transaction_type"`
	TransactionTime   time.Time       `json:"transaction_time"`
}
