package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domain "github.com/obrador/storefront/internal/domain/inventory"
)

type orderMovementKey struct {
	reference uuid.UUID
	product   uuid.UUID
}

// InventoryRepository is the in-memory ledger. Movements are append-only;
// stock is derived by summation on read.
type InventoryRepository struct {
	mu        sync.RWMutex
	movements []*domain.Movement
	orderKeys map[orderMovementKey]struct{}
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{orderKeys: make(map[orderMovementKey]struct{})}
}

func (r *InventoryRepository) Append(ctx context.Context, m *domain.Movement) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.append(m)
	return nil
}

// AppendForOrder checks and inserts under one lock, the in-memory stand-in
// for INSERT ... ON CONFLICT DO NOTHING on the (type, reference, product)
// unique index.
func (r *InventoryRepository) AppendForOrder(ctx context.Context, m *domain.Movement) (bool, error) {
	_ = ctx
	if m.ReferenceID == nil {
		return false, domain.ErrDuplicateForRef
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := orderMovementKey{reference: *m.ReferenceID, product: m.ProductID}
	if _, exists := r.orderKeys[key]; exists {
		return false, nil
	}
	r.orderKeys[key] = struct{}{}
	r.append(m)
	return true, nil
}

func (r *InventoryRepository) StockOf(ctx context.Context, productID uuid.UUID) (int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	stock := 0
	for _, m := range r.movements {
		if m.ProductID == productID {
			stock += m.Quantity
		}
	}
	return stock, nil
}

func (r *InventoryRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Movement, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Movement
	for i := len(r.movements) - 1; i >= 0; i-- {
		if r.movements[i].ProductID == productID {
			clone := *r.movements[i]
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *InventoryRepository) append(m *domain.Movement) {
	clone := *m
	r.movements = append(r.movements, &clone)
}
