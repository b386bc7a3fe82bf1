package repository

import (
	"context"
	"storefront-api/internal/model"

	"gorm.io/gorm"
)

type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) error
	FindByID(ctx context.Context, addressID string) (*model.Address, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Address, error)
}

type addressRepoImpl struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepoImpl{
		db: db,
	}
}

func (r *addressRepoImpl) Create(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *addressRepoImpl) FindByID(ctx context.Context, addressID string) (*model.Address, error) {
	var address model.Address
	err := r.db.WithContext(ctx).
		Where("id = ?", addressID).
		First(&address).Error
	if err != nil {
		return nil, err
	}

	return &address, nil
}

func (r *addressRepoImpl) ListByCustomer(ctx context.Context, customerID string) ([]*model.Address, error) {
	var addresses []*model.Address
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}

	return addresses, nil
}
