package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/obrador/storefront/internal/domain/coupon"
)

type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var c domain.Coupon
	err := r.db.WithContext(ctx).First(&c, "upper(code) = upper(?)", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Redeem consumes one use with a single conditional UPDATE; the cap check
// and the increment cannot interleave with a concurrent redemption.
func (r *CouponRepository) Redeem(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Exec(`UPDATE coupons
		      SET current_uses = current_uses + 1, updated_at = now()
		      WHERE id = ? AND (max_uses IS NULL OR current_uses < max_uses)`, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Coupon{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrMaxUsesReached
	}
	return nil
}

// Release undoes one redemption. The current_uses > 0 predicate keeps a
// stray double release from driving the counter negative.
func (r *CouponRepository) Release(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Exec(`UPDATE coupons
		      SET current_uses = current_uses - 1, updated_at = now()
		      WHERE id = ? AND current_uses > 0`, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Coupon{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
	}
	return nil
}
