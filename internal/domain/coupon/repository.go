package coupon

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)

	// Redeem increments current_uses by exactly one using an atomic
	// conditional update (never read-then-write), so concurrent
	// redemptions cannot overrun max_uses. A coupon at its cap returns
	// ErrMaxUsesReached.
	Redeem(ctx context.Context, id uuid.UUID) error

	// Release hands one previously consumed use back, flooring at zero.
	// It compensates a redemption whose confirmation lost the
	// payment-status race and never became paid.
	Release(ctx context.Context, id uuid.UUID) error
}
