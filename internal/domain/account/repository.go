package account

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByAccountNumber(ctx context.Context, accountNumber string) (*Account, error)
	Update(ctx context.Context, account *Account) error

	// LockForUpdate acquires a row lock for balance mutation. Must run inside
	// a transaction; callers locking multiple accounts must lock them in
	// ascending account-number order.
	LockForUpdate(ctx context.Context, accountNumber string) (*Account, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountNumber string
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountNumber
}

// Is implements the errors.Is interface for ErrAccountNotFound
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	// An empty target account number matches any ErrAccountNotFound
	if t.AccountNumber == "" {
		return true
	}
	return e.AccountNumber == t.AccountNumber
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	AccountNumber string
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for account: " + e.AccountNumber
}

// ErrDuplicateAccountNumber indicates account number uniqueness violation
type ErrDuplicateAccountNumber struct {
	AccountNumber string
}

func (e ErrDuplicateAccountNumber) Error() string {
	return "account already exists: " + e.AccountNumber
}
