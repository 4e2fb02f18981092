package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/transfer-pipeline/internal/domain/transfer"
)

// Orchestrator executes business payment operations against the remote
// account ledger and records their outcome locally.
type Orchestrator interface {
	// Deposit credits the caller's account
	Deposit(ctx context.Context, callerUserID int64, toAccount string, amount decimal.Decimal, message string) (*transfer.Record, error)

	// Dispense debits the caller's account
	Dispense(ctx context.Context, callerUserID int64, fromAccount string, amount decimal.Decimal, message string) (*transfer.Record, error)

	// Transfer moves funds from the caller's account to another account
	Transfer(ctx context.Context, callerUserID int64, fromAccount, toAccount string, amount decimal.Decimal, message string) (*transfer.Record, error)

	// GetPayment retrieves a transfer record by its ID
	GetPayment(ctx context.Context, id uuid.UUID) (*transfer.Record, error)
}
