package repository

import (
	"context"
	"storefront-api/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	FindByID(ctx context.Context, tx *gorm.DB, cartID string) (*model.Cart, error)
	FindByCustomer(ctx context.Context, customerID string) (*model.Cart, error)
	UpsertItem(ctx context.Context, item *model.CartItem) (*model.CartItem, error)
	FindItem(ctx context.Context, itemID string) (*model.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteItem(ctx context.Context, itemID string) error
	ClearItems(ctx context.Context, tx *gorm.DB, cartID string) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.created_at ASC").Order("cart_items.id ASC")
	}).Preload("Items.Variant.Product")
}

// Create is a no-op when the customer already has a cart.
func (r *cartRepoImpl) Create(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoNothing: true,
		}).
		Create(cart).Error
}

func (r *cartRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, cartID string) (*model.Cart, error) {
	var cart model.Cart
	err := withItems(pick(ctx, r.db, tx)).
		Where("id = ?", cartID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) FindByCustomer(ctx context.Context, customerID string) (*model.Cart, error) {
	var cart model.Cart
	err := withItems(r.db.WithContext(ctx)).
		Where("customer_id = ?", customerID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}

	return &cart, nil
}

// UpsertItem inserts the line or adds its quantity to the existing (cart, variant) line
// in a single statement, then returns the stored row.
func (r *cartRepoImpl) UpsertItem(ctx context.Context, item *model.CartItem) (*model.CartItem, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "variant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", item.Quantity),
			"updated_at": time.Now(),
		}),
	}).Create(item).Error
	if err != nil {
		return nil, err
	}

	var stored model.CartItem
	err = r.db.WithContext(ctx).
		Preload("Variant.Product").
		Where("cart_id = ? AND variant_id = ?", item.CartID, item.VariantID).
		First(&stored).Error
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

func (r *cartRepoImpl) FindItem(ctx context.Context, itemID string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *cartRepoImpl) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *cartRepoImpl) DeleteItem(ctx context.Context, itemID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&model.CartItem{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *cartRepoImpl) ClearItems(ctx context.Context, tx *gorm.DB, cartID string) error {
	return pick(ctx, r.db, tx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}
