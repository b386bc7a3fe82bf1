package service

import (
	"context"
	"fmt"
	"regexp"
	"storefront-api/internal/model"
	"storefront-api/internal/payment"
	"storefront-api/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

type CheckoutInput struct {
	CustomerID        string
	CartID            string
	BillingAddressID  string
	ShippingAddressID string
	Currency          string              // optional, store default when empty
	PaymentMethod     model.PaymentMethod // optional, CARD when empty
}

type CheckoutResult struct {
	OrderID       string
	OrderNumber   string
	Total         decimal.Decimal
	Currency      string
	PaymentMethod model.PaymentMethod
	Provider      string
	PaymentURL    string
	ClientToken   string
}

type CheckoutService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
}

type checkoutServiceImpl struct {
	db              *gorm.DB
	cartRepo        repository.CartRepository
	addressRepo     repository.AddressRepository
	orderRepo       repository.OrderRepository
	providers       *payment.Registry
	defaultCurrency string
	log             zerolog.Logger
	now             func() time.Time
}

func NewCheckoutService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	orderRepo repository.OrderRepository,
	providers *payment.Registry,
	defaultCurrency string,
	log zerolog.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		db:              db,
		cartRepo:        cartRepo,
		addressRepo:     addressRepo,
		orderRepo:       orderRepo,
		providers:       providers,
		defaultCurrency: defaultCurrency,
		log:             log.With().Str("component", "checkout").Logger(),
		now:             time.Now,
	}
}

// Checkout turns the cart into a PENDING/UNPAID order and asks the payment
// provider for an intent. The cart stays intact until the payment is confirmed.
func (s *checkoutServiceImpl) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, validationf("currency %q must be a 3-letter ISO code", in.Currency)
	}

	method := in.PaymentMethod
	if method == "" {
		method = model.PaymentMethodCard
	}
	if !method.Valid() {
		return nil, validationf("unknown payment method %q", method)
	}

	cart, err := s.cartRepo.FindByID(ctx, nil, in.CartID)
	if err != nil {
		return nil, lookupErr("cart", err)
	}
	if cart.CustomerID != in.CustomerID {
		return nil, fmt.Errorf("%w: cart", ErrNotFound)
	}
	if len(cart.Items) == 0 {
		return nil, validationf("cart is empty")
	}

	billing, err := s.customerAddress(ctx, in.CustomerID, in.BillingAddressID, "billing")
	if err != nil {
		return nil, err
	}
	shipping, err := s.customerAddress(ctx, in.CustomerID, in.ShippingAddressID, "shipping")
	if err != nil {
		return nil, err
	}

	order, err := s.buildOrder(cart, billing, shipping, currency, method)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("total", order.Total.StringFixed(2)).
		Str("method", method.String()).
		Msg("order created")

	provider := s.providers.ForMethod(method)
	intent, err := provider.CreatePaymentIntent(ctx, intentRequest(order))
	if err != nil {
		s.log.Error().Err(err).
			Str("order_id", order.ID).
			Str("provider", provider.Name()).
			Msg("create payment intent failed")
		return nil, fmt.Errorf("%w: %s: %v", ErrPaymentProvider, provider.Name(), err)
	}

	result := &CheckoutResult{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Total:         order.Total,
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		Provider:      provider.Name(),
	}
	if intent != nil {
		result.PaymentURL = intent.RedirectURL
		result.ClientToken = intent.ClientToken
	}

	return result, nil
}

// customerAddress reports a foreign address as a validation error, not as missing.
func (s *checkoutServiceImpl) customerAddress(ctx context.Context, customerID, addressID, kind string) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		return nil, lookupErr(kind+" address", err)
	}
	if address.CustomerID != customerID {
		return nil, validationf("%s address does not belong to the customer", kind)
	}
	return address, nil
}

// buildOrder snapshots every line against the live variant. Stock is checked
// here but not reserved; it is decremented when the payment is confirmed.
func (s *checkoutServiceImpl) buildOrder(cart *model.Cart, billing, shipping *model.Address, currency string, method model.PaymentMethod) (*model.Order, error) {
	orderID := uuid.NewString()
	subtotal := decimal.Zero
	items := make([]model.OrderItem, 0, len(cart.Items))

	for _, line := range cart.Items {
		v := line.Variant
		if v == nil || !v.IsActive || (v.Product != nil && !v.Product.IsActive) {
			return nil, validationf("variant %s is no longer available", line.VariantID)
		}
		if line.Quantity > v.Stock {
			return nil, validationf("only %d left of %s", v.Stock, v.SKU)
		}

		lineTotal := v.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		items = append(items, model.OrderItem{
			OrderID:     orderID,
			VariantID:   v.ID,
			ProductName: v.ProductName(),
			VariantName: v.Name,
			SKU:         v.SKU,
			UnitPrice:   v.Price,
			Quantity:    line.Quantity,
			LineTotal:   lineTotal,
		})
	}

	return &model.Order{
		ID:                orderID,
		OrderNumber:       newOrderNumber(s.now()),
		CustomerID:        cart.CustomerID,
		CartID:            cart.ID,
		Status:            model.OrderStatusPending,
		PaymentStatus:     model.PaymentStatusUnpaid,
		FulfillmentStatus: model.FulfillmentUnfulfilled,
		PaymentMethod:     method,
		Currency:          currency,
		Subtotal:          subtotal,
		Total:             subtotal,
		Items:             items,
		Addresses: []model.OrderAddress{
			model.SnapshotAddress(model.AddressKindBilling, billing),
			model.SnapshotAddress(model.AddressKindShipping, shipping),
		},
	}, nil
}

func intentRequest(order *model.Order) payment.IntentRequest {
	items := make([]payment.IntentItem, 0, len(order.Items))
	for _, it := range order.Items {
		name := it.ProductName
		if name == "" {
			name = it.VariantName
		}
		items = append(items, payment.IntentItem{
			Name:      name,
			SKU:       it.SKU,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	return payment.IntentRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		Currency:    order.Currency,
		Method:      order.PaymentMethod,
		Items:       items,
		Billing:     order.Address(model.AddressKindBilling),
	}
}
