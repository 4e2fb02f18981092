// Package ledgerclient is the payment service's HTTP client for the account
// ledger. Every call carries a bounded timeout, and every failure is tagged
// as exactly one of ValidationError, DomainError, or TransportError so the
// orchestrator can decide between FAILED-with-reason and unknown-outcome.
package ledgerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/corebank/transfer-pipeline/internal/config"
	"github.com/corebank/transfer-pipeline/internal/middleware"
)

// ResolvedAccount is the ledger's public view of an account
type ResolvedAccount struct {
	AccountNumber string `json:"account_number"`
	UserID        int64  `json:"user_id"`
	Status        string `json:"status"`
}

// Client defines the ledger operations the orchestrator needs
type Client interface {
	Resolve(ctx context.Context, accountNumber string) (*ResolvedAccount, error)
	Credit(ctx context.Context, accountNumber string, amount decimal.Decimal) error
	Debit(ctx context.Context, accountNumber string, amount decimal.Decimal) error
	Transfer(ctx context.Context, fromAccount, toAccount string, amount decimal.Decimal) error
}

// HTTPClient implements Client against the ledger's REST API
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a ledger client with the configured request timeout
func NewHTTPClient(logger *slog.Logger, cfg *config.LedgerClientConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

// envelope mirrors the ledger's response wrapper
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Resolve fetches account identity for ownership checks
func (c *HTTPClient) Resolve(ctx context.Context, accountNumber string) (*ResolvedAccount, error) {
	var acc ResolvedAccount
	err := c.do(ctx, http.MethodGet, "/api/v1/accounts/"+accountNumber, nil, &acc)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Credit adds funds to the account
func (c *HTTPClient) Credit(ctx context.Context, accountNumber string, amount decimal.Decimal) error {
	body := map[string]interface{}{"amount": amount}
	return c.do(ctx, http.MethodPost, "/api/v1/accounts/"+accountNumber+"/credit", body, nil)
}

// Debit removes funds from the account
func (c *HTTPClient) Debit(ctx context.Context, accountNumber string, amount decimal.Decimal) error {
	body := map[string]interface{}{"amount": amount}
	return c.do(ctx, http.MethodPost, "/api/v1/accounts/"+accountNumber+"/debit", body, nil)
}

// Transfer moves funds between two accounts in one atomic ledger transaction
func (c *HTTPClient) Transfer(ctx context.Context, fromAccount, toAccount string, amount decimal.Decimal) error {
	body := map[string]interface{}{
		"from_account": fromAccount,
		"to_account":   toAccount,
		"amount":       amount,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/accounts/transfer", body, nil)
}

// do executes one ledger call and classifies the outcome. Any error where the
// response never arrived (or arrived broken) is a TransportError; a 4xx with
// a stable code is a DomainError or ValidationError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return TransportError{Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return TransportError{Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if correlationID := middleware.CorrelationFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.CorrelationIDHeader, correlationID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Ledger call failed", "method", method, "path", path, "error", err)
		return TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransportError{Err: fmt.Errorf("failed to read ledger response: %w", err)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return TransportError{Err: fmt.Errorf("failed to decode ledger response (status %d): %w", resp.StatusCode, err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return TransportError{Err: fmt.Errorf("failed to decode ledger response data: %w", err)}
			}
		}
		return nil
	}

	code := "UNEXPECTED_ERROR"
	message := "ledger returned an error without details"
	if env.Error != nil {
		code = env.Error.Code
		message = env.Error.Message
	}

	switch {
	case resp.StatusCode >= 500:
		return TransportError{Err: fmt.Errorf("ledger returned %d: %s", resp.StatusCode, message)}
	case code == "BAD_REQUEST":
		return ValidationError{Code: code, Message: message}
	default:
		return DomainError{Code: code, Message: message}
	}
}
