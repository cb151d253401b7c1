package order

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists the order together with all of its items as one
	// atomic unit. A failure must leave no partial order behind.
	Create(ctx context.Context, o *Order) error

	// Get loads an order with its items.
	Get(ctx context.Context, id uuid.UUID) (*Order, error)

	// UpdatePaymentStatus performs a conditional update: the row is only
	// touched when the stored payment status still equals expect. A lost
	// race surfaces as ErrPaymentStatusConflict.
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, expect, next PaymentStatus) error

	// UpdateStatus stores a new fulfillment status.
	UpdateStatus(ctx context.Context, id uuid.UUID, next Status) error
}
