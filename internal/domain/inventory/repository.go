package inventory

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Append records a movement unconditionally.
	Append(ctx context.Context, m *Movement) error

	// AppendForOrder records an order deduction only when no movement of
	// type order exists yet for the same (reference, product) pair. It
	// reports whether a row was written, so re-confirming a paid order
	// never double-decrements stock.
	AppendForOrder(ctx context.Context, m *Movement) (bool, error)

	// StockOf sums all movements for a product. Readers observe a value
	// consistent with every committed movement.
	StockOf(ctx context.Context, productID uuid.UUID) (int, error)

	// ListByProduct returns the ledger for a product, newest first.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*Movement, error)
}
