package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists the invoice and all of its items atomically.
	// A second invoice for the same order must fail with ErrDuplicate
	// (backed by a uniqueness constraint, not an ad-hoc check); a reused
	// number fails with ErrNumberTaken.
	Create(ctx context.Context, inv *Invoice) error

	// GetByOrderID loads the invoice with its items.
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Invoice, error)

	// MarkSent sets sent_at, the only mutable invoice field.
	MarkSent(ctx context.Context, orderID uuid.UUID, at time.Time) error
}
