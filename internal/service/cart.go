package service

import (
	"context"
	"errors"
	"fmt"
	"storefront-api/internal/cache"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type CartService interface {
	GetOrCreateCart(ctx context.Context, customerID string) (*model.Cart, error)
	// GetCart is GetOrCreateCart served through the read cache.
	GetCart(ctx context.Context, customerID string) (*model.Cart, error)
	// AddItem adds to the customer's own cart when cartID is empty, creating it on first use.
	AddItem(ctx context.Context, customerID, cartID, variantID string, quantity int) (*model.Cart, error)
	// UpdateItemQty removes the item when quantity is 0.
	UpdateItemQty(ctx context.Context, customerID, itemID string, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, customerID, itemID string) (*model.Cart, error)
	Clear(ctx context.Context, customerID, cartID string) error
}

type cartServiceImpl struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	cartCache   cache.CartCache
	group       singleflight.Group
	log         zerolog.Logger
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	cartCache cache.CartCache,
	log zerolog.Logger,
) CartService {
	return &cartServiceImpl{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cartCache:   cartCache,
		log:         log.With().Str("component", "cart").Logger(),
	}
}

func (s *cartServiceImpl) GetOrCreateCart(ctx context.Context, customerID string) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find cart: %w", err)
	}

	// a concurrent request may win the insert; both then read the same row
	if err := s.cartRepo.Create(ctx, &model.Cart{ID: uuid.NewString(), CustomerID: customerID}); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	cart, err = s.cartRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("reload cart: %w", err)
	}
	return cart, nil
}

func (s *cartServiceImpl) GetCart(ctx context.Context, customerID string) (*model.Cart, error) {
	cart, err := s.cartCache.Get(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn().Err(err).Str("customer_id", customerID).Msg("cart cache read failed")
	}

	v, err, _ := s.group.Do(customerID, func() (interface{}, error) {
		cart, err := s.GetOrCreateCart(ctx, customerID)
		if err != nil {
			return nil, err
		}

		if err := s.cartCache.Set(ctx, customerID, cart); err != nil {
			s.log.Warn().Err(err).Str("customer_id", customerID).Msg("cart cache write failed")
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*model.Cart), nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, customerID, cartID, variantID string, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, validationf("quantity must be a positive integer")
	}

	variant, err := s.productRepo.FindVariant(ctx, variantID)
	if err != nil {
		return nil, lookupErr("variant", err)
	}
	if !variant.IsActive || (variant.Product != nil && !variant.Product.IsActive) {
		return nil, fmt.Errorf("%w: variant %s is not available", ErrNotFound, variantID)
	}

	var cart *model.Cart
	if cartID == "" {
		cart, err = s.GetOrCreateCart(ctx, customerID)
	} else {
		cart, err = s.ownedCart(ctx, customerID, cartID)
	}
	if err != nil {
		return nil, err
	}

	_, err = s.cartRepo.UpsertItem(ctx, &model.CartItem{
		ID:        uuid.NewString(),
		CartID:    cart.ID,
		VariantID: variant.ID,
		Quantity:  quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	return s.afterMutation(ctx, customerID, cart.ID)
}

func (s *cartServiceImpl) UpdateItemQty(ctx context.Context, customerID, itemID string, quantity int) (*model.Cart, error) {
	if quantity < 0 {
		return nil, validationf("quantity must not be negative")
	}

	item, err := s.ownedItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		err = s.cartRepo.DeleteItem(ctx, item.ID)
	} else {
		err = s.cartRepo.UpdateItemQuantity(ctx, item.ID, quantity)
	}
	if err != nil {
		return nil, lookupErr("cart item", err)
	}

	return s.afterMutation(ctx, customerID, item.CartID)
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, customerID, itemID string) (*model.Cart, error) {
	item, err := s.ownedItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
		return nil, lookupErr("cart item", err)
	}

	return s.afterMutation(ctx, customerID, item.CartID)
}

func (s *cartServiceImpl) Clear(ctx context.Context, customerID, cartID string) error {
	var cart *model.Cart
	var err error
	if cartID == "" {
		cart, err = s.cartRepo.FindByCustomer(ctx, customerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find cart: %w", err)
		}
	} else {
		cart, err = s.ownedCart(ctx, customerID, cartID)
		if err != nil {
			return err
		}
	}

	if err := s.cartRepo.ClearItems(ctx, nil, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.invalidate(ctx, customerID)
	return nil
}

// ownedCart hides carts of other customers behind ErrNotFound.
func (s *cartServiceImpl) ownedCart(ctx context.Context, customerID, cartID string) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByID(ctx, nil, cartID)
	if err != nil {
		return nil, lookupErr("cart", err)
	}
	if cart.CustomerID != customerID {
		return nil, fmt.Errorf("%w: cart", ErrNotFound)
	}
	return cart, nil
}

func (s *cartServiceImpl) ownedItem(ctx context.Context, customerID, itemID string) (*model.CartItem, error) {
	item, err := s.cartRepo.FindItem(ctx, itemID)
	if err != nil {
		return nil, lookupErr("cart item", err)
	}
	if _, err := s.ownedCart(ctx, customerID, item.CartID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: cart item", ErrNotFound)
		}
		return nil, err
	}
	return item, nil
}

func (s *cartServiceImpl) afterMutation(ctx context.Context, customerID, cartID string) (*model.Cart, error) {
	s.invalidate(ctx, customerID)

	cart, err := s.cartRepo.FindByID(ctx, nil, cartID)
	if err != nil {
		return nil, fmt.Errorf("reload cart: %w", err)
	}
	return cart, nil
}

func (s *cartServiceImpl) invalidate(ctx context.Context, customerID string) {
	if err := s.cartCache.Delete(ctx, customerID); err != nil {
		s.log.Warn().Err(err).Str("customer_id", customerID).Msg("cart cache invalidation failed")
	}
}
