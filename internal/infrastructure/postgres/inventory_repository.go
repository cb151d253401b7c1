package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/obrador/storefront/internal/domain/inventory"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Append(ctx context.Context, m *domain.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// AppendForOrder inserts with ON CONFLICT DO NOTHING on the movement dedup
// index; RowsAffected reports whether this call actually wrote the row.
func (r *InventoryRepository) AppendForOrder(ctx context.Context, m *domain.Movement) (bool, error) {
	if m.ReferenceID == nil {
		return false, domain.ErrDuplicateForRef
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "type"}, {Name: "reference_id"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *InventoryRepository) StockOf(ctx context.Context, productID uuid.UUID) (int, error) {
	var stock int
	err := r.db.WithContext(ctx).Model(&domain.Movement{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("product_id = ?", productID).
		Scan(&stock).Error
	return stock, err
}

func (r *InventoryRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Movement, error) {
	var movements []*domain.Movement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}
