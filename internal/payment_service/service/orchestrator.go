// Package service implements the payment orchestrator: each operation writes
// a PENDING record, calls the remote ledger, and lands the record in exactly
// one terminal state. A successful outcome and its outbox event are committed
// together, which is what guarantees the event is eventually published.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/corebank/transfer-pipeline/internal/domain/outbox"
	"github.com/corebank/transfer-pipeline/internal/domain/shared"
	"github.com/corebank/transfer-pipeline/internal/domain/transfer"
	"github.com/corebank/transfer-pipeline/internal/payment_service/ledgerclient"
)

// Validation errors returned before any record is written
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")
	ErrNotAccountOwner     = errors.New("account is not owned by the caller")
)

// TxRunner abstracts transactional execution for testability.
// *persistence.PostgresDB satisfies it.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// OrchestratorImpl implements the Orchestrator interface
type OrchestratorImpl struct {
	transferRepo transfer.Repository
	outboxRepo   outbox.Repository
	ledger       ledgerclient.Client
	txRunner     TxRunner
	logger       *slog.Logger
}

// NewOrchestrator creates a new payment orchestrator
func NewOrchestrator(
	logger *slog.Logger,
	transferRepo transfer.Repository,
	outboxRepo outbox.Repository,
	ledger ledgerclient.Client,
	txRunner TxRunner,
) Orchestrator {
	return &OrchestratorImpl{
		transferRepo: transferRepo,
		outboxRepo:   outboxRepo,
		ledger:       ledger,
		txRunner:     txRunner,
		logger:       logger,
	}
}

// Deposit credits the caller's account. The caller must own the destination.
func (s *OrchestratorImpl) Deposit(ctx context.Context, callerUserID int64, toAccount string, amount decimal.Decimal, message string) (*transfer.Record, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	if _, err := s.resolveOwned(ctx, callerUserID, toAccount); err != nil {
		return nil, err
	}

	rec := transfer.NewRecord(shared.TransactionTypeDeposit, callerUserID, callerUserID, "", toAccount, amount, message)
	return s.execute(ctx, rec, func(ctx context.Context) error {
		return s.ledger.Credit(ctx, toAccount, amount)
	})
}

// Dispense debits the caller's account. The caller must own the source.
func (s *OrchestratorImpl) Dispense(ctx context.Context, callerUserID int64, fromAccount string, amount decimal.Decimal, message string) (*transfer.Record, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	if _, err := s.resolveOwned(ctx, callerUserID, fromAccount); err != nil {
		return nil, err
	}

	rec := transfer.NewRecord(shared.TransactionTypeDispense, callerUserID, callerUserID, fromAccount, "", amount, message)
	return s.execute(ctx, rec, func(ctx context.Context) error {
		return s.ledger.Debit(ctx, fromAccount, amount)
	})
}

// Transfer moves funds from the caller's account to another account. The
// ledger performs both legs in one atomic transaction, so the orchestrator
// never has a half-applied transfer to compensate.
func (s *OrchestratorImpl) Transfer(ctx context.Context, callerUserID int64, fromAccount, toAccount string, amount decimal.Decimal, message string) (*transfer.Record, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if fromAccount == toAccount {
		return nil, ErrSameAccountTransfer
	}

	if _, err := s.resolveOwned(ctx, callerUserID, fromAccount); err != nil {
		return nil, err
	}
	dest, err := s.ledger.Resolve(ctx, toAccount)
	if err != nil {
		return nil, err
	}

	rec := transfer.NewRecord(shared.TransactionTypeTransfer, callerUserID, dest.UserID, fromAccount, toAccount, amount, message)
	return s.execute(ctx, rec, func(ctx context.Context) error {
		return s.ledger.Transfer(ctx, fromAccount, toAccount, amount)
	})
}

// GetPayment retrieves a transfer record by its ID
func (s *OrchestratorImpl) GetPayment(ctx context.Context, id uuid.UUID) (*transfer.Record, error) {
	return s.transferRepo.GetByID(ctx, id)
}

// resolveOwned fetches the account from the ledger and verifies ownership
func (s *OrchestratorImpl) resolveOwned(ctx context.Context, callerUserID int64, accountNumber string) (*ledgerclient.ResolvedAccount, error) {
	acc, err := s.ledger.Resolve(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if acc.UserID != callerUserID {
		return nil, ErrNotAccountOwner
	}
	return acc, nil
}

// execute runs the PENDING -> terminal sequence: the PENDING row gets its own
// commit so a stable id exists before the remote call, then the ledger
// mutation decides the terminal state. On success the status update and the
// outbox event share one commit; on failure the record goes FAILED with a
// stable reason and no event is staged.
func (s *OrchestratorImpl) execute(ctx context.Context, rec *transfer.Record, mutate func(ctx context.Context) error) (*transfer.Record, error) {
	if err := s.transferRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	if err := mutate(ctx); err != nil {
		reason := failureReasonFor(err)
		if updateErr := s.transferRepo.UpdateStatus(ctx, rec.ID, shared.TransferStatusFailed, string(reason)); updateErr != nil {
			s.logger.Error("Failed to mark transfer record as failed",
				"id", rec.ID.String(),
				"reason", string(reason),
				"error", updateErr,
			)
		}
		rec.Status = shared.TransferStatusFailed
		rec.Message = string(reason)
		return rec, err
	}

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.transferRepo.WithTx(tx).UpdateStatus(ctx, rec.ID, shared.TransferStatusSuccess, rec.Message); err != nil {
			return err
		}

		event, err := outbox.NewEvent(rec)
		if err != nil {
			return err
		}
		return s.outboxRepo.WithTx(tx).Stage(ctx, event)
	})
	if err != nil {
		s.logger.Error("Failed to commit transfer success", "id", rec.ID.String(), "error", err)
		return nil, err
	}

	rec.Status = shared.TransferStatusSuccess
	return rec, nil
}

// failureReasonFor maps a ledger call failure to a stable reason string
func failureReasonFor(err error) shared.FailureReason {
	var domainErr ledgerclient.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case "INSUFFICIENT_FUNDS":
			return shared.FailureReasonInsufficientFunds
		case "ACCOUNT_NOT_FOUND":
			return shared.FailureReasonAccountNotFound
		case "ACCOUNT_INACTIVE":
			return shared.FailureReasonAccountInactive
		case "INVALID_AMOUNT":
			return shared.FailureReasonInvalidAmount
		case "SAME_ACCOUNT_TRANSFER":
			return shared.FailureReasonSameAccount
		}
	}
	return shared.FailureReasonUnexpectedError
}
