// Package handler exposes the payment operations over HTTP. Caller identity
// comes from the X-User-ID header placed by the upstream gateway.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/corebank/transfer-pipeline/internal/domain/transfer"
	"github.com/corebank/transfer-pipeline/internal/httpapi"
	"github.com/corebank/transfer-pipeline/internal/payment_service/ledgerclient"
	"github.com/corebank/transfer-pipeline/internal/payment_service/service"
)

// UserIDHeader carries the authenticated caller's user id
const UserIDHeader = "X-User-ID"

// PaymentHandler handles HTTP requests for payment operations
type PaymentHandler struct {
	orchestrator service.Orchestrator
	logger       *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, orchestrator service.Orchestrator) *PaymentHandler {
	return &PaymentHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Deposit credits the caller's account
func (h *PaymentHandler) Deposit(c *gin.Context) {
	callerID, ok := h.callerUserID(c)
	if !ok {
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.orchestrator.Deposit(c.Request.Context(), callerID, req.ToAccount, req.Amount, req.Message)
	h.respond(c, rec, err)
}

// Dispense debits the caller's account
func (h *PaymentHandler) Dispense(c *gin.Context) {
	callerID, ok := h.callerUserID(c)
	if !ok {
		return
	}

	var req DispenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.orchestrator.Dispense(c.Request.Context(), callerID, req.FromAccount, req.Amount, req.Message)
	h.respond(c, rec, err)
}

// Transfer moves funds from the caller's account to another account
func (h *PaymentHandler) Transfer(c *gin.Context) {
	callerID, ok := h.callerUserID(c)
	if !ok {
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.orchestrator.Transfer(c.Request.Context(), callerID, req.FromAccount, req.ToAccount, req.Amount, req.Message)
	h.respond(c, rec, err)
}

// GetByID retrieves a transfer record, returning 404 if not found
func (h *PaymentHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		httpapi.RespondBadRequest(c, "Invalid payment ID")
		return
	}

	rec, err := h.orchestrator.GetPayment(c.Request.Context(), id)
	if err != nil {
		var notFoundErr transfer.ErrRecordNotFound
		if errors.As(err, &notFoundErr) {
			httpapi.RespondNotFound(c, "Payment not found")
			return
		}
		h.logger.Error("Failed to get payment", "id", idParam, "error", err)
		httpapi.RespondInternalError(c)
		return
	}

	httpapi.RespondOK(c, mapRecordToResponse(rec))
}

// callerUserID extracts and validates the X-User-ID header
func (h *PaymentHandler) callerUserID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader(UserIDHeader)
	if raw == "" {
		httpapi.RespondUnauthorized(c, "Missing "+UserIDHeader+" header")
		return 0, false
	}

	callerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || callerID <= 0 {
		httpapi.RespondUnauthorized(c, "Invalid "+UserIDHeader+" header")
		return 0, false
	}

	return callerID, true
}

// respond maps an orchestrator outcome to an HTTP response. A record in a
// terminal state is returned even when the operation failed, so the caller
// sees the failure reason and can look the payment up later.
func (h *PaymentHandler) respond(c *gin.Context, rec *transfer.Record, err error) {
	if err == nil {
		httpapi.RespondOK(c, mapRecordToResponse(rec))
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrSameAccountTransfer):
		httpapi.RespondBadRequest(c, err.Error())
		return
	case errors.Is(err, service.ErrNotAccountOwner):
		httpapi.RespondForbidden(c, err.Error())
		return
	}

	var validationErr ledgerclient.ValidationError
	var domainErr ledgerclient.DomainError
	var transportErr ledgerclient.TransportError
	switch {
	case errors.As(err, &validationErr):
		httpapi.RespondBadRequest(c, validationErr.Message)
	case errors.As(err, &domainErr):
		if rec != nil {
			// Operation reached a terminal FAILED state with a stable reason
			httpapi.RespondUnprocessableEntity(c, domainErr.Code, "Payment "+rec.ID.String()+" failed: "+domainErr.Message)
			return
		}
		if domainErr.Code == "ACCOUNT_NOT_FOUND" {
			httpapi.RespondNotFound(c, domainErr.Message)
			return
		}
		httpapi.RespondUnprocessableEntity(c, domainErr.Code, domainErr.Message)
	case errors.As(err, &transportErr):
		h.logger.Error("Ledger unreachable or failed", "error", err)
		httpapi.RespondWithError(c, http.StatusBadGateway, "LEDGER_UNAVAILABLE", "The ledger could not confirm the operation")
	default:
		h.logger.Error("Payment operation failed", "error", err)
		httpapi.RespondInternalError(c)
	}
}

// mapRecordToResponse maps a transfer record to a payment response DTO
func mapRecordToResponse(rec *transfer.Record) PaymentResponse {
	return PaymentResponse{
		ID:                rec.ID.String(),
		FromUserID:        rec.FromUserID,
		ToUserID:          rec.ToUserID,
		FromAccountNumber: rec.FromAccountNumber,
		ToAccountNumber:   rec.ToAccountNumber,
		Amount:            rec.Amount,
		Type:              string(rec.Type),
		Status:            string(rec.Status),
		Message:           rec.Message,
		CreatedAt:         rec.CreatedAt.Format(time.RFC3339),
	}
}
