package postgres

import (
	"context"

	"gorm.io/gorm"
)

// invoiceSequence holds one counter row per issuing year.
type invoiceSequence struct {
	Year int   `gorm:"primaryKey"`
	Last int64 `gorm:"not null"`
}

func (invoiceSequence) TableName() string { return "invoice_sequences" }

// Sequence allocates invoice numbers from a per-year counter row. The upsert
// locks the row, so two concurrent allocations can never return the same
// value. Gaps from abandoned allocations are tolerated.
type Sequence struct {
	db *gorm.DB
}

func NewSequence(db *gorm.DB) *Sequence {
	return &Sequence{db: db}
}

func (s *Sequence) Next(ctx context.Context, year int) (int64, error) {
	var next int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO invoice_sequences (year, last) VALUES (?, 1)
		ON CONFLICT (year) DO UPDATE SET last = invoice_sequences.last + 1
		RETURNING last`, year).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}
