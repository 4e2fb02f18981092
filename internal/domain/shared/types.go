// Package shared holds the enumerations and wire types exchanged between the
// payment orchestrator, the outbox relay, and the history projector.
package shared

// TransactionType defines the business operations the orchestrator executes
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeDispense TransactionType = "DISPENSE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// TransferStatus defines the lifecycle of a transfer record.
// PENDING is written before any remote call; the record then moves to exactly
// one terminal state and never transitions again.
type TransferStatus string

const (
	TransferStatusPending TransferStatus = "PENDING"
	TransferStatusSuccess TransferStatus = "SUCCESS"
	TransferStatusFailed  TransferStatus = "FAILED"
)

// OutboxStatus defines event publishing states. SENT events are retained for
// audit and replay, never deleted.
type OutboxStatus string

const (
	OutboxStatusNew  OutboxStatus = "NEW"
	OutboxStatusSent OutboxStatus = "SENT"
)

// AccountStatus defines account lifecycle states in the ledger
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// FailureReason defines the stable reason strings recorded on failed transfers
type FailureReason string

const (
	FailureReasonInsufficientFunds FailureReason = "INSUFFICIENT_FUNDS"
	FailureReasonAccountNotFound   FailureReason = "ACCOUNT_NOT_FOUND"
	FailureReasonAccountInactive   FailureReason = "ACCOUNT_INACTIVE"
	FailureReasonInvalidAmount     FailureReason = "INVALID_AMOUNT"
	FailureReasonSameAccount       FailureReason = "SAME_ACCOUNT_TRANSFER"
	FailureReasonForbidden         FailureReason = "ACCOUNT_NOT_OWNED_BY_CALLER"
	FailureReasonUnexpectedError   FailureReason = "UNEXPECTED_ERROR"
)
