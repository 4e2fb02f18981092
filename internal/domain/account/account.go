package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/transfer-pipeline/internal/domain/shared"
)

// Common errors
var (
	ErrInsufficientFunds     = errors.New("insufficient funds for debit")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrAccountInactive       = errors.New("account is not active")
	ErrEmptyAccountNumber    = errors.New("account number cannot be empty")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
)

// Account represents a bank account owned by the ledger service.
// Balance is only ever mutated through Credit/Debit inside a locked
// transaction; the orchestrator never touches it directly.
type Account struct {
	AccountNumber string               `json:"account_number"`
	UserID        int64                `json:"user_id"`
	Balance       decimal.Decimal      `json:"balance"`
	Currency      string               `json:"currency"`
	Status        shared.AccountStatus `json:"status"`
	Version       int                  `json:"version"` // Bumped on every balance mutation
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// NewAccount creates a new active account with the given parameters
func NewAccount(accountNumber string, userID int64, initialBalance decimal.Decimal, currency string) (*Account, error) {
	if accountNumber == "" {
		return nil, ErrEmptyAccountNumber
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrencyFormat
	}
	if initialBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Account{
		AccountNumber: accountNumber,
		UserID:        userID,
		Balance:       initialBalance,
		Currency:      currency,
		Status:        shared.AccountStatusActive,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Credit adds the specified amount to the account balance
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if a.Status != shared.AccountStatusActive {
		return ErrAccountInactive
	}

	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// Debit subtracts the specified amount from the account balance.
// The balance never goes negative: a debit larger than the balance fails.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if a.Status != shared.AccountStatusActive {
		return ErrAccountInactive
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	a.Balance = a.Balance.Sub(amount)
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// CanDebit checks if the account has sufficient funds for a debit
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return !a.Balance.LessThan(amount)
}
