package handler

import "github.com/shopspring/decimal"

// CreateAccountRequest represents a request to open a new account
type CreateAccountRequest struct {
	AccountNumber  string          `json:"account_number" binding:"required"`
	UserID         int64           `json:"user_id" binding:"required"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Currency       string          `json:"currency" binding:"required,len=3"`
}

// AmountRequest represents a credit or debit request body
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest represents an atomic two-leg transfer request
type TransferRequest struct {
	FromAccount string          `json:"from_account" binding:"required"`
	ToAccount   string          `json:"to_account" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	AccountNumber string `json:"account_number"`
	UserID        int64  `json:"user_id"`
	Status        string `json:"status"`
}

// BalanceResponse represents an account balance in API responses
type BalanceResponse struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
}
