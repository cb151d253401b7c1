package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/obrador/storefront/internal/domain/invoice"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create inserts the invoice and its lines atomically. The unique indexes on
// order_id and number arbitrate concurrent generation. The translated gorm
// error does not say which index fired, so a duplicate is classified by
// whether an invoice for the order already exists.
func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(inv).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var count int64
		if countErr := r.db.WithContext(ctx).Model(&domain.Invoice{}).
			Where("order_id = ?", inv.OrderID).Count(&count).Error; countErr != nil {
			return countErr
		}
		if count > 0 {
			return domain.ErrDuplicate
		}
		return domain.ErrNumberTaken
	}
	return err
}

func (r *InvoiceRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.WithContext(ctx).Preload("Items").First(&inv, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) MarkSent(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("order_id = ?", orderID).
		Update("sent_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
