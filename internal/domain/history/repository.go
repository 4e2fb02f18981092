package history

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages history entry persistence
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	ExistsByTransactionID(ctx context.Context, transactionID uuid.UUID) (bool, error)
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Entry, error)
}

// ErrEntryNotFound indicates missing history entry
type ErrEntryNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "history entry not found: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrDuplicateEntry indicates transaction id uniqueness violation.
// The projector treats it as confirmation the entry already landed.
type ErrDuplicateEntry struct {
	TransactionID uuid.UUID
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate history entry: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrDuplicateEntry
func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
