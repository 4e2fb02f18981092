package handler

import "github.com/shopspring/decimal"

// DepositRequest credits the caller's own account
type DepositRequest struct {
	ToAccount string          `json:"to_account" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message"`
}

// DispenseRequest debits the caller's own account
type DispenseRequest struct {
	FromAccount string          `json:"from_account" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Message     string          `json:"message"`
}

// TransferRequest moves funds from the caller's account to another account
type TransferRequest struct {
	FromAccount string          `json:"from_account" binding:"required"`
	ToAccount   string          `json:"to_account" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Message     string          `json:"message"`
}

// PaymentResponse represents a transfer record in API responses
type PaymentResponse struct {
	ID                string          `json:"id"`
	FromUserID        int64           `json:"from_user_id"`
	ToUserID          int64           `json:"to_user_id"`
	FromAccountNumber string          `json:"from_account_number,omitempty"`
	ToAccountNumber   string          `json:"to_account_number,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"transaction_type"`
	Status            string          `json:"status"`
	Message           string          `json:"message,omitempty"`
	CreatedAt         string          `json:"created_at"`
}
