package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	domain "github.com/obrador/storefront/internal/domain/coupon"
)

type CouponRepository struct {
	mu      sync.RWMutex
	coupons map[uuid.UUID]*domain.Coupon
	byCode  map[string]uuid.UUID
}

func NewCouponRepository() *CouponRepository {
	return &CouponRepository{
		coupons: make(map[uuid.UUID]*domain.Coupon),
		byCode:  make(map[string]uuid.UUID),
	}
}

// Put stores or replaces a coupon. Codes are matched case-insensitively.
func (r *CouponRepository) Put(c *domain.Coupon) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *c
	r.coupons[c.ID] = &clone
	r.byCode[strings.ToUpper(c.Code)] = c.ID
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *r.coupons[id]
	return &clone, nil
}

// Redeem is the in-memory equivalent of
// UPDATE coupons SET current_uses = current_uses + 1
// WHERE id = ? AND (max_uses IS NULL OR current_uses < max_uses):
// check and increment happen under one lock, never read-then-write.
func (r *CouponRepository) Redeem(ctx context.Context, id uuid.UUID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.coupons[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		return domain.ErrMaxUsesReached
	}
	c.CurrentUses++
	return nil
}

// Release gives one use back, flooring at zero.
func (r *CouponRepository) Release(ctx context.Context, id uuid.UUID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.coupons[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.CurrentUses > 0 {
		c.CurrentUses--
	}
	return nil
}
