package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/corebank/transfer-pipeline/internal/domain/shared"
)

// Repository manages transfer record persistence
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// UpdateStatus moves a PENDING record to a terminal status. Records
	// already in a terminal status are never updated again.
	UpdateStatus(ctx context.Context, id uuid.UUID, status shared.TransferStatus, message string) error
	WithTx(tx pgx.Tx) Repository
}

// ErrRecordNotFound indicates missing transfer record
type ErrRecordNotFound struct {
	ID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "transfer record not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrRecordNotFound
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
