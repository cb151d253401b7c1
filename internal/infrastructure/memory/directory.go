package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domain "github.com/obrador/storefront/internal/domain/invoice"
)

// BuyerDirectory resolves buyer snapshots from a static profile table.
type BuyerDirectory struct {
	mu     sync.RWMutex
	buyers map[uuid.UUID]domain.Buyer
}

func NewBuyerDirectory() *BuyerDirectory {
	return &BuyerDirectory{buyers: make(map[uuid.UUID]domain.Buyer)}
}

func (d *BuyerDirectory) Put(id uuid.UUID, b domain.Buyer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buyers[id] = b
}

func (d *BuyerDirectory) Buyer(ctx context.Context, id uuid.UUID) (*domain.Buyer, error) {
	_ = ctx
	d.mu.RLock()
	defer d.mu.RUnlock()

	b, ok := d.buyers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

// BusinessInfo serves a fixed seller snapshot, typically loaded from
// configuration at startup.
type BusinessInfo struct {
	seller domain.Seller
}

func NewBusinessInfo(s domain.Seller) *BusinessInfo {
	return &BusinessInfo{seller: s}
}

func (b *BusinessInfo) Seller(ctx context.Context) (domain.Seller, error) {
	_ = ctx
	return b.seller, nil
}
