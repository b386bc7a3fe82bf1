package service

import (
	"context"
	"fmt"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"strings"

	"github.com/google/uuid"
)

type AddressInput struct {
	FullName   string
	Email      string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type AddressService interface {
	Create(ctx context.Context, customerID string, in AddressInput) (*model.Address, error)
	List(ctx context.Context, customerID string) ([]*model.Address, error)
}

type addressServiceImpl struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressServiceImpl{
		addressRepo: addressRepo,
	}
}

func (s *addressServiceImpl) Create(ctx context.Context, customerID string, in AddressInput) (*model.Address, error) {
	address := &model.Address{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		FullName:   in.FullName,
		Email:      in.Email,
		Phone:      in.Phone,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    strings.ToUpper(in.Country),
	}

	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return address, nil
}

func (s *addressServiceImpl) List(ctx context.Context, customerID string) ([]*model.Address, error) {
	addresses, err := s.addressRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}
