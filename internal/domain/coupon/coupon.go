package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation failures carry the rejection reason in the sentinel itself so
// callers can surface it verbatim; no partial order is ever created on top
// of any of these.
var (
	ErrNotFound       = errors.New("coupon: code not found")
	ErrInactive       = errors.New("coupon: code is disabled")
	ErrExpired        = errors.New("coupon: validity window has passed")
	ErrNotYetValid    = errors.New("coupon: validity window has not started")
	ErrMaxUsesReached = errors.New("coupon: maximum uses reached")
	ErrBelowMinimum   = errors.New("coupon: order subtotal below minimum")
	ErrInvalidValue   = errors.New("coupon: discount value must be greater than zero")
	ErrInvalidType    = errors.New("coupon: unknown discount type")
)

// IsInvalid reports whether err is one of the coupon validation failures,
// as opposed to a storage or lookup infrastructure error.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInactive) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrNotYetValid) ||
		errors.Is(err, ErrMaxUsesReached) ||
		errors.Is(err, ErrBelowMinimum)
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

type Coupon struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Code           string           `gorm:"type:varchar(40);not null;uniqueIndex"`
	DiscountType   DiscountType     `gorm:"type:varchar(20);not null"`
	DiscountValue  decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	MinOrderAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MaxUses        *int
	CurrentUses    int       `gorm:"not null;default:0"`
	ValidFrom      time.Time `gorm:"not null"`
	ValidUntil     time.Time `gorm:"not null"`
	IsActive       bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Coupon) TableName() string { return "coupons" }

// Validate evaluates the coupon rules against an order subtotal at the given
// instant. It is pure: no usage is consumed here.
func (c *Coupon) Validate(subtotal decimal.Decimal, now time.Time) error {
	if !c.IsActive {
		return ErrInactive
	}
	if now.Before(c.ValidFrom) {
		return ErrNotYetValid
	}
	if now.After(c.ValidUntil) {
		return ErrExpired
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		return ErrMaxUsesReached
	}
	if c.MinOrderAmount != nil && subtotal.LessThan(*c.MinOrderAmount) {
		return ErrBelowMinimum
	}
	return nil
}

// Discount computes the discount amount for a subtotal, rounded to cents.
// Percentage coupons take subtotal * value / 100; fixed coupons take the
// value as-is.
func (c *Coupon) Discount(subtotal decimal.Decimal) (decimal.Decimal, error) {
	if !c.DiscountValue.IsPositive() {
		return decimal.Zero, ErrInvalidValue
	}
	switch c.DiscountType {
	case DiscountPercentage:
		return subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(2), nil
	case DiscountFixed:
		return c.DiscountValue.Round(2), nil
	default:
		return decimal.Zero, ErrInvalidType
	}
}
