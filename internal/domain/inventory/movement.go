package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidType     = errors.New("inventory: unknown movement type")
	ErrZeroQuantity    = errors.New("inventory: quantity must not be zero")
	ErrWrongSign       = errors.New("inventory: quantity sign does not match movement type")
	ErrMissingActor    = errors.New("inventory: actor is required")
	ErrDuplicateForRef = errors.New("inventory: movement already recorded for this reference")
)

// MovementType labels a ledger entry. Each type carries a sign convention;
// manual_adjustment goes whichever way the caller says.
type MovementType string

const (
	TypeProduction       MovementType = "production"
	TypeOrder            MovementType = "order"
	TypePhysicalSale     MovementType = "physical_sale"
	TypeDamagedProduct   MovementType = "damaged_product"
	TypeDamagedSale      MovementType = "damaged_sale"
	TypeManualAdjustment MovementType = "manual_adjustment"
)

func (t MovementType) Valid() bool {
	switch t {
	case TypeProduction, TypeOrder, TypePhysicalSale, TypeDamagedProduct, TypeDamagedSale, TypeManualAdjustment:
		return true
	}
	return false
}

// Sign returns +1 for inbound types, -1 for outbound types and 0 for
// manual adjustments, which accept either direction.
func (t MovementType) Sign() int {
	switch t {
	case TypeProduction:
		return 1
	case TypeOrder, TypePhysicalSale, TypeDamagedProduct, TypeDamagedSale:
		return -1
	default:
		return 0
	}
}

// Movement is one append-only ledger entry. Current stock is the sum of all
// movements for a product; rows are never updated or deleted. The composite
// unique index deduplicates referenced movements, so a replayed payment
// confirmation cannot deduct the same order line twice.
type Movement struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID    `gorm:"type:uuid;not null;index;uniqueIndex:ux_inventory_movement_ref"`
	Type        MovementType `gorm:"type:varchar(30);not null;uniqueIndex:ux_inventory_movement_ref"`
	Quantity    int          `gorm:"not null"`
	ReferenceID *uuid.UUID   `gorm:"type:uuid;uniqueIndex:ux_inventory_movement_ref"`
	Notes       string       `gorm:"type:text"`
	Actor       string       `gorm:"type:varchar(100);not null"`
	CreatedAt   time.Time
}

func (Movement) TableName() string { return "inventory_movements" }

// NewMovement validates the sign convention and builds a ledger entry.
func NewMovement(id, productID uuid.UUID, t MovementType, quantity int, referenceID *uuid.UUID, notes, actor string) (*Movement, error) {
	if !t.Valid() {
		return nil, ErrInvalidType
	}
	if quantity == 0 {
		return nil, ErrZeroQuantity
	}
	if actor == "" {
		return nil, ErrMissingActor
	}
	if sign := t.Sign(); sign > 0 && quantity < 0 || sign < 0 && quantity > 0 {
		return nil, ErrWrongSign
	}
	return &Movement{
		ID:          id,
		ProductID:   productID,
		Type:        t,
		Quantity:    quantity,
		ReferenceID: referenceID,
		Notes:       notes,
		Actor:       actor,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
