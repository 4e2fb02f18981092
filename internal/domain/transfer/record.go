package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/transfer-pipeline/internal/domain/shared"
)

// Record is the local transaction record for one business operation.
// It is created PENDING before any remote ledger call so a stable id exists
// for correlation, then moves to exactly one of SUCCESS or FAILED.
type Record struct {
	ID                uuid.UUID              `json:"id"`
	FromUserID        int64                  `json:"from_user_id"`
	ToUserID          int64                  `json:"to_user_id"`
	FromAccountNumber string                 `json:"from_account_number"`
	ToAccountNumber   string                 `json:"to_account_number"`
	Amount            decimal.Decimal        `json:"amount"`
	Type              shared.TransactionType `json:"transaction_type"`
	Status            shared.TransferStatus  `json:"status"`
	Message           string                 `json:"message,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

// NewRecord creates a PENDING record for the given operation. Deposit leaves
// the source account empty, dispense the destination; both sides carry the
// same user for single-leg operations.
func NewRecord(txType shared.TransactionType, fromUserID, toUserID int64, fromAccount, toAccount string, amount decimal.Decimal, message string) *Record {
	return &Record{
		ID:                uuid.New(),
		FromUserID:        fromUserID,
		ToUserID:          toUserID,
		FromAccountNumber: fromAccount,
		ToAccountNumber:   toAccount,
		Amount:            amount,
		Type:              txType,
		Status:            shared.TransferStatusPending,
		Message:           message,
		CreatedAt:         time.Now(),
	}
}

// CompletedEvent builds the transaction-completed event for a successful record
func (r *Record) CompletedEvent() *shared.TransactionCompletedEvent {
	return &shared.TransactionCompletedEvent{
		TransactionID:     r.ID,
		FromUserID:        r.FromUserID,
		ToUserID:          r.ToUserID,
		FromAccountNumber: r.FromAccountNumber,
		ToAccountNumber:   r.ToAccountNumber,
		Amount:            r.Amount,
		Message:           r.Message,
		Status:            shared.TransferStatusSuccess,
		Type:              r.Type,
		TransactionTime:   r.CreatedAt,
	}
}
