package repository

import (
	"context"
	"storefront-api/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	// Create reports false when a payment with the same provider and
	// transaction id already exists.
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) (bool, error)
	Exists(ctx context.Context, provider, transactionID string) (bool, error)
	LatestPaid(ctx context.Context, orderID string) (*model.Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]*model.Payment, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, paymentID string, status model.PaymentStatus) error
}

type paymentRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepositoryImpl{
		db: db,
	}
}

func (r *paymentRepositoryImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) (bool, error) {
	result := pick(ctx, r.db, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "transaction_id"}},
			DoNothing: true,
		}).
		Create(payment)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *paymentRepositoryImpl) Exists(ctx context.Context, provider, transactionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("provider = ? AND transaction_id = ?", provider, transactionID).
		Count(&count).Error

	return count > 0, err
}

// LatestPaid returns the authoritative payment of an order.
func (r *paymentRepositoryImpl) LatestPaid(ctx context.Context, orderID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, model.PaymentStatusPaid).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepositoryImpl) ListByOrder(ctx context.Context, orderID string) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepositoryImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, paymentID string, status model.PaymentStatus) error {
	result := pick(ctx, r.db, tx).
		Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"status":     status,
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
