package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound              = errors.New("order: not found")
	ErrEmptyCart             = errors.New("order: cart must contain at least one line")
	ErrInvalidQuantity       = errors.New("order: quantity must be greater than zero")
	ErrInvalidUnitPrice      = errors.New("order: unit price must be zero or greater")
	ErrInvalidDeliveryFee    = errors.New("order: delivery fee must be zero or greater")
	ErrInvalidPaymentMethod  = errors.New("order: unknown payment method")
	ErrInvalidStatus         = errors.New("order: unknown fulfillment status")
	ErrInvalidPaymentStatus  = errors.New("order: unknown payment status")
	ErrInvalidTransition     = errors.New("order: fulfillment status transition not allowed")
	ErrPaymentTransition     = errors.New("order: payment status transition not allowed")
	ErrPaymentStatusConflict = errors.New("order: payment status changed concurrently")
	ErrConflict              = errors.New("order: already exists")
)

// Status is the fulfillment state of an order, driven by staff action.
// It is independent from PaymentStatus.
type Status string

const (
	StatusPending      Status = "pending"
	StatusConfirmed    Status = "confirmed"
	StatusInProduction Status = "in_production"
	StatusReady        Status = "ready"
	StatusDelivered    Status = "delivered"
	StatusCancelled    Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProduction, StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks the settlement state of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// PaymentMethod selects how an order is settled. Cash and transfer settle
// outside the engine; card goes through the external payment gateway.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodCard     PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCard:
		return true
	}
	return false
}

// Offline reports whether the method settles outside this engine, i.e. no
// payment-gateway follow-up step is expected.
func (m PaymentMethod) Offline() bool {
	return m == MethodCash || m == MethodTransfer
}

type Order struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BuyerID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status         Status          `gorm:"type:varchar(20);not null"`
	PaymentStatus  PaymentStatus   `gorm:"type:varchar(20);not null"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(20);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DeliveryFee    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CouponID       *uuid.UUID      `gorm:"type:uuid"`
	BuyerTaxID     *string         `gorm:"type:varchar(20)"`
	AddressID      *uuid.UUID      `gorm:"type:uuid"`
	DeliveryDate   *time.Time
	Notes          string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Items []Item `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// Item is an order line. UnitPrice is tax inclusive and snapshotted at order
// time, as is TaxRate; neither is ever taken from client input.
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CreatedAt   time.Time
}

func (Item) TableName() string { return "order_items" }

// NewItem builds an order line and derives TotalPrice = UnitPrice * Quantity.
func NewItem(id, productID uuid.UUID, name string, quantity int, unitPrice, taxRate decimal.Decimal) (Item, error) {
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return Item{}, ErrInvalidUnitPrice
	}
	return Item{
		ID:          id,
		ProductID:   productID,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		TaxRate:     taxRate,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ComputeTotal applies the pricing invariant:
// total = max(0, subtotal - discount) + deliveryFee.
func ComputeTotal(subtotal, discount, deliveryFee decimal.Decimal) decimal.Decimal {
	net := subtotal.Sub(discount)
	if net.IsNegative() {
		net = decimal.Zero
	}
	return net.Add(deliveryFee)
}

// New assembles an order from priced lines. Coupon terms are locked in via
// discount and couponID; the order starts as pending/pending.
func New(id, buyerID uuid.UUID, items []Item, method PaymentMethod, discount, deliveryFee decimal.Decimal, couponID *uuid.UUID) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if deliveryFee.IsNegative() {
		return nil, ErrInvalidDeliveryFee
	}

	subtotal := decimal.Zero
	for i := range items {
		items[i].OrderID = id
		subtotal = subtotal.Add(items[i].TotalPrice)
	}

	now := time.Now().UTC()
	return &Order{
		ID:             id,
		BuyerID:        buyerID,
		Status:         StatusPending,
		PaymentStatus:  PaymentPending,
		PaymentMethod:  method,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		DeliveryFee:    deliveryFee,
		Total:          ComputeTotal(subtotal, discount, deliveryFee),
		CouponID:       couponID,
		Items:          items,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func nowUTC() time.Time { return time.Now().UTC() }

// HasTaxID reports whether the buyer supplied a tax identification number.
// Its presence alone decides the invoice type later on.
func (o *Order) HasTaxID() bool {
	return o.BuyerTaxID != nil && *o.BuyerTaxID != ""
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.CouponID != nil {
		id := *o.CouponID
		clone.CouponID = &id
	}
	if o.AddressID != nil {
		id := *o.AddressID
		clone.AddressID = &id
	}
	if o.BuyerTaxID != nil {
		tid := *o.BuyerTaxID
		clone.BuyerTaxID = &tid
	}
	if o.DeliveryDate != nil {
		d := *o.DeliveryDate
		clone.DeliveryDate = &d
	}
	clone.Items = append([]Item(nil), o.Items...)
	return &clone
}
