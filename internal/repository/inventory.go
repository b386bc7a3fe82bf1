package repository

import (
	"context"
	"storefront-api/internal/model"
	"time"

	"gorm.io/gorm"
)

type InventoryRepository interface {
	// DecrementStock returns false when the variant no longer has enough stock;
	// the row is left unchanged in that case.
	DecrementStock(ctx context.Context, tx *gorm.DB, variantID string, quantity int) (bool, error)
}

type inventoryRepoImpl struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepoImpl{
		db: db,
	}
}

func (r *inventoryRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, variantID string, quantity int) (bool, error) {
	result := pick(ctx, r.db, tx).
		Model(&model.Variant{}).
		Where("id = ? AND stock >= ?", variantID, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
