package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/corebank/transfer-pipeline/internal/domain/shared"
	"github.com/corebank/transfer-pipeline/internal/domain/transfer"
	"github.com/corebank/transfer-pipeline/internal/platform/persistence"
)

// TransferRepository implements the transfer.Repository interface for PostgreSQL
type TransferRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransferRepository creates a new PostgreSQL transfer record repository
func NewTransferRepository(logger *slog.Logger, db *persistence.PostgresDB) transfer.Repository {
	return &TransferRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *TransferRepository) WithTx(tx pgx.Tx) transfer.Repository {
	return &TransferRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new PENDING transfer record
func (r *TransferRepository) Create(ctx context.Context, rec *transfer.Record) error {
	query := `
		INSERT INTO transfer_records (id, from_user_id, to_user_id, from_account_number, to_account_number, amount, transaction_type, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.FromUserID,
		rec.ToUserID,
		rec.FromAccountNumber,
		rec.ToAccountNumber,
		rec.Amount,
		rec.Type,
		rec.Status,
		rec.Message,
		rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transfer record", "id", rec.ID.String(), "error", err)
		return fmt.Errorf("failed to create transfer record: %w", err)
	}

	return nil
}

// GetByID retrieves a transfer record by its ID
func (r *TransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*transfer.Record, error) {
	query := `
		SELECT id, from_user_id, to_user_id, from_account_number, to_account_number, amount, transaction_type, status, message, created_at
		FROM transfer_records
		WHERE id = $1
	`

	var rec transfer.Record
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.FromUserID,
		&rec.ToUserID,
		&rec.FromAccountNumber,
		&rec.ToAccountNumber,
		&rec.Amount,
		&rec.Type,
		&rec.Status,
		&rec.Message,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transfer.ErrRecordNotFound{ID: id}
		}
		r.logger.Error("Failed to get transfer record", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transfer record: %w", err)
	}

	return &rec, nil
}

// UpdateStatus moves a PENDING record to a terminal status. The status guard
// in the WHERE clause keeps terminal records immutable.
func (r *TransferRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.TransferStatus, message string) error {
	query := `
		UPDATE transfer_records
		SET status = $1, message = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.querier.Exec(ctx, query, status, message, id, shared.TransferStatusPending)
	if err != nil {
		r.logger.Error("Failed to update transfer record status",
			"id", id.String(),
			"status", string(status),
			"error", err,
		)
		return fmt.Errorf("failed to update transfer record status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transfer.ErrRecordNotFound{ID: id}
	}

	return nil
}
