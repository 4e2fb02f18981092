package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/corebank/transfer-pipeline/internal/domain/account"
)

// BalanceService defines the ledger's balance operations. Every mutation runs
// inside a database transaction with the affected rows locked.
type BalanceService interface {
	// CreateAccount creates a new active account
	// Returns ErrDuplicateAccountNumber if the account number is taken
	CreateAccount(ctx context.Context, accountNumber string, userID int64, initialBalance decimal.Decimal, currency string) (*account.Account, error)

	// GetAccount retrieves an account by its account number
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccount(ctx context.Context, accountNumber string) (*account.Account, error)

	// Credit adds amount to the account balance
	Credit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*account.Account, error)

	// Debit subtracts amount from the account balance
	// Returns ErrInsufficientFunds if the balance would go negative
	Debit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*account.Account, error)

	// Transfer moves amount between two accounts atomically: both legs commit
	// or neither does
	Transfer(ctx context.Context, fromAccount, toAccount string, amount decimal.Decimal) error
}

// TxRunner abstracts transactional execution for testability.
// *persistence.PostgresDB satisfies it.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
