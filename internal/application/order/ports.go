package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("catalog: product not found")

type IDGenerator interface {
	NewID() uuid.UUID
}

// CatalogProduct is the authoritative pricing snapshot for one product.
// UnitPrice is tax inclusive.
type CatalogProduct struct {
	ID        uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
}

// Catalog resolves per-product price and tax rate. Client-supplied values
// are never used for persistence.
type Catalog interface {
	Product(ctx context.Context, id uuid.UUID) (*CatalogProduct, error)
}
