package repository

import (
	"context"
	"storefront-api/internal/model"
	"time"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Order, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, orderID string, fields map[string]interface{}) error
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID string) (bool, error)
	MarkPaymentFailed(ctx context.Context, tx *gorm.DB, orderID string) (bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	}).Preload("Addresses")
}

// Create stores the order together with its items and address snapshots.
func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return pick(ctx, r.db, tx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := withLines(pick(ctx, r.db, tx)).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListByCustomer(ctx context.Context, customerID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := withLines(r.db.WithContext(ctx)).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) UpdateFields(ctx context.Context, tx *gorm.DB, orderID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	result := pick(ctx, r.db, tx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// MarkPaid moves payment_status to PAID and confirms a still pending order.
// It reports whether this call was the one that made the order paid.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID string) (bool, error) {
	db := pick(ctx, r.db, tx)
	now := time.Now()

	result := db.Model(&model.Order{}).
		Where("id = ? AND payment_status IN ?", orderID,
			[]model.PaymentStatus{model.PaymentStatusUnpaid, model.PaymentStatusFailed},
		).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusPaid,
			"updated_at":     now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	err := db.Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":     model.OrderStatusConfirmed,
			"updated_at": now,
		}).Error

	return true, err
}

// MarkPaymentFailed never downgrades a PAID or REFUNDED order.
func (r *orderRepoImpl) MarkPaymentFailed(ctx context.Context, tx *gorm.DB, orderID string) (bool, error) {
	result := pick(ctx, r.db, tx).
		Model(&model.Order{}).
		Where("id = ? AND payment_status IN ?", orderID,
			[]model.PaymentStatus{model.PaymentStatusUnpaid, model.PaymentStatusFailed},
		).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusFailed,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
