package outbox

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages transactional outbox event persistence.
// SENT events are retained for audit and replay; there is no delete.
type Repository interface {
	// Stage inserts a NEW event. Called only inside the orchestrator's
	// success commit via WithTx.
	Stage(ctx context.Context, event *Event) error

	// GetNew fetches up to limit NEW events in created_at order. One relay
	// instance drains a given outbox; a duplicate publish from a second
	// instance would be absorbed by the downstream dedup, not prevented here.
	GetNew(ctx context.Context, limit int) ([]*Event, error)

	MarkSent(ctx context.Context, id int64) error
	GetByAggregateID(ctx context.Context, aggregateID uuid.UUID) (*Event, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrEventNotFound indicates missing outbox event
type ErrEventNotFound struct {
	ID int64
}

func (e ErrEventNotFound) Error() string {
	return "outbox event not found: " + strconv.FormatInt(e.ID, 10)
}

// ErrDuplicateEvent indicates event id uniqueness violation
type ErrDuplicateEvent struct {
	EventID uuid.UUID
}

func (e ErrDuplicateEvent) Error() string {
	return "duplicate outbox event: " + e.EventID.String()
}
