package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domain "github.com/obrador/storefront/internal/domain/order"
)

// OrderRepository keeps orders in process memory. Mutations hold one lock,
// which gives the same atomicity guarantees the SQL implementation gets
// from transactions and conditional updates.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.ID]; exists {
		return domain.ErrConflict
	}
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, expect, next domain.PaymentStatus) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.PaymentStatus != expect {
		return domain.ErrPaymentStatusConflict
	}
	o.PaymentStatus = next
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.Status) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = next
	return nil
}
