package service

import (
	"context"
	"fmt"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
)

type CatalogService interface {
	ListVariants(ctx context.Context) ([]*model.Variant, error)
	SeedDemoCatalog(ctx context.Context) error
}

type catalogServiceImpl struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogServiceImpl{
		productRepo: productRepo,
	}
}

func (s *catalogServiceImpl) ListVariants(ctx context.Context) ([]*model.Variant, error) {
	variants, err := s.productRepo.ListActiveVariants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	return variants, nil
}

func (s *catalogServiceImpl) SeedDemoCatalog(ctx context.Context) error {
	if err := s.productRepo.Seed(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}
