package repository

import (
	"context"
	"storefront-api/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindVariant(ctx context.Context, variantID string) (*model.Variant, error)
	FindVariants(ctx context.Context, tx *gorm.DB, variantIDs []string) ([]*model.Variant, error)
	ListActiveVariants(ctx context.Context) ([]*model.Variant, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: "tshirt", Name: "Cotton T-Shirt", IsActive: true},
		{ID: "hoodie", Name: "Fleece Hoodie", IsActive: true},
	}
	variants := []model.Variant{
		{ID: "tshirt-black-m", ProductID: "tshirt", Name: "Black / M", SKU: "TS-BLK-M", Price: decimal.NewFromInt(50), Stock: 100, IsActive: true},
		{ID: "tshirt-white-l", ProductID: "tshirt", Name: "White / L", SKU: "TS-WHT-L", Price: decimal.NewFromInt(50), Stock: 100, IsActive: true},
		{ID: "hoodie-grey-m", ProductID: "hoodie", Name: "Grey / M", SKU: "HD-GRY-M", Price: decimal.NewFromInt(30), Stock: 40, IsActive: true},
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&variants).Error
	})
}

func (r *productRepoImpl) FindVariant(ctx context.Context, variantID string) (*model.Variant, error) {
	var variant model.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", variantID).
		First(&variant).Error

	if err != nil {
		return nil, err
	}

	return &variant, nil
}

func (r *productRepoImpl) FindVariants(ctx context.Context, tx *gorm.DB, variantIDs []string) ([]*model.Variant, error) {
	var variants []*model.Variant
	err := pick(ctx, r.db, tx).
		Preload("Product").
		Where("id IN ?", variantIDs).
		Find(&variants).
		Error

	if err != nil {
		return nil, err
	}

	return variants, nil
}

func (r *productRepoImpl) ListActiveVariants(ctx context.Context) ([]*model.Variant, error) {
	var variants []*model.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Select("variants.*").
		Joins("JOIN products ON products.id = variants.product_id").
		Where("variants.is_active = ? AND products.is_active = ?", true, true).
		Order("variants.sku ASC").
		Find(&variants).
		Error

	if err != nil {
		return nil, err
	}

	return variants, nil
}
