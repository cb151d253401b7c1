package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	apporder "github.com/obrador/storefront/internal/application/order"
)

// Catalog is a static product lookup used by tests and the in-memory
// deployment profile.
type Catalog struct {
	mu       sync.RWMutex
	products map[uuid.UUID]apporder.CatalogProduct
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[uuid.UUID]apporder.CatalogProduct)}
}

func (c *Catalog) Put(p apporder.CatalogProduct) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

func (c *Catalog) Product(ctx context.Context, id uuid.UUID) (*apporder.CatalogProduct, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, apporder.ErrProductNotFound
	}
	return &p, nil
}
