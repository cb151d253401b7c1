package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/obrador/storefront/internal/domain/invoice"
)

type InvoiceRepository struct {
	mu      sync.RWMutex
	byOrder map[uuid.UUID]*domain.Invoice
	numbers map[string]struct{}
}

func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{
		byOrder: make(map[uuid.UUID]*domain.Invoice),
		numbers: make(map[string]struct{}),
	}
}

// Create enforces both uniqueness constraints (order_id, number) under one
// lock, mirroring the SQL unique indexes.
func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOrder[inv.OrderID]; exists {
		return domain.ErrDuplicate
	}
	if _, exists := r.numbers[inv.Number]; exists {
		return domain.ErrNumberTaken
	}

	clone := cloneInvoice(inv)
	r.byOrder[inv.OrderID] = clone
	r.numbers[inv.Number] = struct{}{}
	return nil
}

func (r *InvoiceRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Invoice, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.byOrder[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneInvoice(inv), nil
}

func (r *InvoiceRepository) MarkSent(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.byOrder[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	inv.SentAt = &at
	return nil
}

func cloneInvoice(inv *domain.Invoice) *domain.Invoice {
	clone := *inv
	if inv.BuyerTaxID != nil {
		tid := *inv.BuyerTaxID
		clone.BuyerTaxID = &tid
	}
	if inv.SentAt != nil {
		at := *inv.SentAt
		clone.SentAt = &at
	}
	clone.Items = append([]domain.Item(nil), inv.Items...)
	return &clone
}
