// Package handler exposes the ledger's account operations over HTTP.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corebank/transfer-pipeline/internal/domain/account"
	"github.com/corebank/transfer-pipeline/internal/httpapi"
	"github.com/corebank/transfer-pipeline/internal/ledger_service/service"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	balanceService service.BalanceService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, balanceService service.BalanceService) *AccountHandler {
	return &AccountHandler{
		balanceService: balanceService,
		logger:         logger,
	}
}

// Create handles creation of a new account
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.balanceService.CreateAccount(c.Request.Context(), req.AccountNumber, req.UserID, req.InitialBalance, req.Currency)
	if err != nil {
		var duplicateErr account.ErrDuplicateAccountNumber
		if errors.As(err, &duplicateErr) {
			h.logger.Warn("Attempt to create account with duplicate number", "account_number", duplicateErr.AccountNumber)
			httpapi.RespondConflict(c, "Account with this number already exists")
			return
		}
		if errors.Is(err, account.ErrInvalidAmount) || errors.Is(err, account.ErrEmptyAccountNumber) || errors.Is(err, account.ErrInvalidCurrencyFormat) {
			httpapi.RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create account", "error", err)
		httpapi.RespondInternalError(c)
		return
	}

	httpapi.RespondCreated(c, mapAccountToResponse(acc))
}

// Get retrieves an account by its account number, returning 404 if not found
func (h *AccountHandler) Get(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	acc, err := h.balanceService.GetAccount(c.Request.Context(), accountNumber)
	if err != nil {
		h.respondAccountError(c, accountNumber, err)
		return
	}

	httpapi.RespondOK(c, mapAccountToResponse(acc))
}

// GetBalance retrieves an account's current balance
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	acc, err := h.balanceService.GetAccount(c.Request.Context(), accountNumber)
	if err != nil {
		h.respondAccountError(c, accountNumber, err)
		return
	}

	httpapi.RespondOK(c, BalanceResponse{
		AccountNumber: acc.AccountNumber,
		Balance:       acc.Balance,
		Currency:      acc.Currency,
	})
}

// Credit adds funds to an account
func (h *AccountHandler) Credit(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.balanceService.Credit(c.Request.Context(), accountNumber, req.Amount)
	if err != nil {
		h.respondAccountError(c, accountNumber, err)
		return
	}

	httpapi.RespondOK(c, BalanceResponse{
		AccountNumber: acc.AccountNumber,
		Balance:       acc.Balance,
		Currency:      acc.Currency,
	})
}

// Debit removes funds from an account, failing if the balance would go negative
func (h *AccountHandler) Debit(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.balanceService.Debit(c.Request.Context(), accountNumber, req.Amount)
	if err != nil {
		h.respondAccountError(c, accountNumber, err)
		return
	}

	httpapi.RespondOK(c, BalanceResponse{
		AccountNumber: acc.AccountNumber,
		Balance:       acc.Balance,
		Currency:      acc.Currency,
	})
}

// Transfer moves funds between two accounts atomically
func (h *AccountHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	err := h.balanceService.Transfer(c.Request.Context(), req.FromAccount, req.ToAccount, req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrSameAccountTransfer) {
			httpapi.RespondWithError(c, http.StatusBadRequest, "SAME_ACCOUNT_TRANSFER", err.Error())
			return
		}
		h.respondAccountError(c, req.FromAccount, err)
		return
	}

	httpapi.RespondOK(c, gin.H{"status": "completed"})
}

// respondAccountError maps domain errors to stable HTTP error codes
func (h *AccountHandler) respondAccountError(c *gin.Context, accountNumber string, err error) {
	var notFoundErr account.ErrAccountNotFound
	switch {
	case errors.As(err, &notFoundErr):
		httpapi.RespondWithError(c, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found: "+notFoundErr.AccountNumber)
	case errors.Is(err, account.ErrInsufficientFunds):
		httpapi.RespondWithError(c, http.StatusBadRequest, "INSUFFICIENT_FUNDS", err.Error())
	case errors.Is(err, account.ErrInvalidAmount):
		httpapi.RespondWithError(c, http.StatusBadRequest, "INVALID_AMOUNT", err.Error())
	case errors.Is(err, account.ErrAccountInactive):
		httpapi.RespondWithError(c, http.StatusBadRequest, "ACCOUNT_INACTIVE", err.Error())
	default:
		h.logger.Error("Account operation failed", "account_number", accountNumber, "error", err)
		httpapi.RespondInternalError(c)
	}
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		AccountNumber: acc.AccountNumber,
		UserID:        acc.UserID,
		Status:        string(acc.Status),
	}
}
