package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"storefront-api/internal/cache"
	"storefront-api/internal/model"
	"storefront-api/internal/payment"
	"storefront-api/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// WebhookResult describes what applying a provider outcome did to an order.
type WebhookResult struct {
	OrderID       string
	TransactionID string
	Status        payment.Outcome
	Duplicate     bool // outcome was already applied, nothing changed
	Ignored       bool // event carried no final outcome
	Order         *model.Order
}

type OrderService interface {
	ProcessWebhook(ctx context.Context, providerName string, raw []byte, headers http.Header) (*WebhookResult, error)
	ApplyPaymentOutcome(ctx context.Context, providerName string, data *payment.WebhookData) (*WebhookResult, error)
	ConfirmPayment(ctx context.Context, customerID, providerName, orderID, token string) (*WebhookResult, error)
	RecordCashPayment(ctx context.Context, orderID string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, next model.OrderStatus, force bool) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID string, next model.PaymentStatus, force bool) (*model.Order, error)
	UpdateFulfillmentStatus(ctx context.Context, orderID string, next model.FulfillmentStatus, force bool) (*model.Order, error)
	RefundPayment(ctx context.Context, orderID string) (*model.Order, error)
	// GetOrder hides orders of other customers; an empty customerID skips the check.
	GetOrder(ctx context.Context, customerID, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, customerID string) ([]*model.Order, error)
}

type orderServiceImpl struct {
	db               *gorm.DB
	orderRepo        repository.OrderRepository
	paymentRepo      repository.PaymentRepository
	webhookEventRepo repository.WebhookEventRepository
	inventoryRepo    repository.InventoryRepository
	cartRepo         repository.CartRepository
	cartCache        cache.CartCache
	providers        *payment.Registry
	log              zerolog.Logger
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	webhookEventRepo repository.WebhookEventRepository,
	inventoryRepo repository.InventoryRepository,
	cartRepo repository.CartRepository,
	cartCache cache.CartCache,
	providers *payment.Registry,
	log zerolog.Logger,
) OrderService {
	return &orderServiceImpl{
		db:               db,
		orderRepo:        orderRepo,
		paymentRepo:      paymentRepo,
		webhookEventRepo: webhookEventRepo,
		inventoryRepo:    inventoryRepo,
		cartRepo:         cartRepo,
		cartCache:        cartCache,
		providers:        providers,
		log:              log.With().Str("component", "orders").Logger(),
	}
}

// ProcessWebhook authenticates and normalizes the payload through the provider
// before anything is read from or written to the database.
func (s *orderServiceImpl) ProcessWebhook(ctx context.Context, providerName string, raw []byte, headers http.Header) (*WebhookResult, error) {
	provider, ok := s.providers.Get(providerName)
	if !ok {
		return nil, fmt.Errorf("%w: payment provider %s", ErrNotFound, providerName)
	}

	var signature string
	if h := provider.SignatureHeader(); h != "" {
		signature = headers.Get(h)
	}

	data, err := provider.HandleWebhook(ctx, raw, signature, headers)
	switch {
	case err == nil:
	case errors.Is(err, payment.ErrSignatureInvalid):
		s.log.Warn().Err(err).Str("provider", providerName).Int("bytes", len(raw)).Msg("rejected webhook with invalid signature")
		return nil, fmt.Errorf("%w: %s", ErrSignatureInvalid, providerName)
	case errors.Is(err, payment.ErrNotFinal):
		s.log.Info().Err(err).Str("provider", providerName).Msg("webhook ignored")
		return &WebhookResult{Ignored: true}, nil
	case errors.Is(err, payment.ErrMalformedPayload), errors.Is(err, payment.ErrUnsupported):
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	default:
		return nil, fmt.Errorf("%w: %s: %v", ErrPaymentProvider, providerName, err)
	}

	return s.ApplyPaymentOutcome(ctx, provider.Name(), data)
}

// ApplyPaymentOutcome is idempotent per provider transaction id: a replay
// returns Duplicate and leaves the order, its payments, stock and cart untouched.
func (s *orderServiceImpl) ApplyPaymentOutcome(ctx context.Context, providerName string, data *payment.WebhookData) (*WebhookResult, error) {
	if data == nil || data.OrderID == "" || data.TransactionID == "" {
		return nil, validationf("payment outcome needs an order and a transaction id")
	}
	if data.Status != payment.OutcomePaid && data.Status != payment.OutcomeFailed {
		return nil, validationf("unknown payment outcome %q", data.Status)
	}

	result := &WebhookResult{
		OrderID:       data.OrderID,
		TransactionID: data.TransactionID,
		Status:        data.Status,
	}
	var clearedFor string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eventID := model.WebhookEventID(providerName, data.TransactionID)

		seen, err := s.webhookEventRepo.Exists(ctx, tx, eventID)
		if err != nil {
			return fmt.Errorf("check webhook ledger: %w", err)
		}
		if seen {
			result.Duplicate = true
			return nil
		}

		order, err := s.orderRepo.FindByID(ctx, tx, data.OrderID)
		if err != nil {
			return lookupErr("order", err)
		}

		if data.Status == payment.OutcomePaid {
			if err := matchesOrder(order, data); err != nil {
				s.log.Warn().Err(err).
					Str("provider", providerName).
					Str("order_id", order.ID).
					Str("transaction_id", data.TransactionID).
					Msg("payment does not match order")
				return err
			}
		}

		created, err := s.paymentRepo.Create(ctx, tx, newPayment(providerName, order, data))
		if err != nil {
			return fmt.Errorf("store payment: %w", err)
		}
		if !created {
			result.Duplicate = true
			return nil
		}

		switch data.Status {
		case payment.OutcomePaid:
			first, err := s.markPaid(ctx, tx, order)
			if err != nil {
				return err
			}
			if first {
				clearedFor = order.CustomerID
			}
		case payment.OutcomeFailed:
			changed, err := s.orderRepo.MarkPaymentFailed(ctx, tx, order.ID)
			if err != nil {
				return fmt.Errorf("mark payment failed: %w", err)
			}
			if !changed {
				s.log.Info().Str("order_id", order.ID).Str("payment_status", order.PaymentStatus.String()).
					Msg("late payment failure left order status unchanged")
			}
		}

		return s.webhookEventRepo.MarkProcessed(ctx, tx, &model.WebhookEvent{
			EventID:  eventID,
			Provider: providerName,
			Status:   string(data.Status),
			OrderID:  order.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	if clearedFor != "" {
		s.invalidateCart(ctx, clearedFor)
	}

	s.log.Info().
		Str("provider", providerName).
		Str("order_id", data.OrderID).
		Str("transaction_id", data.TransactionID).
		Str("outcome", string(data.Status)).
		Bool("duplicate", result.Duplicate).
		Msg("payment outcome applied")

	order, err := s.orderRepo.FindByID(ctx, nil, data.OrderID)
	if err != nil {
		return nil, lookupErr("order", err)
	}
	result.Order = order

	return result, nil
}

func (s *orderServiceImpl) ConfirmPayment(ctx context.Context, customerID, providerName, orderID, token string) (*WebhookResult, error) {
	provider, ok := s.providers.Get(providerName)
	if !ok {
		return nil, fmt.Errorf("%w: payment provider %s", ErrNotFound, providerName)
	}
	confirmer, ok := provider.(payment.Confirmer)
	if !ok {
		return nil, validationf("provider %s does not confirm payments", providerName)
	}

	order, err := s.GetOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod == model.PaymentMethodCash {
		return nil, validationf("cash orders are paid on delivery")
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return &WebhookResult{OrderID: order.ID, Status: payment.OutcomePaid, Duplicate: true, Order: order}, nil
	}

	data, err := confirmer.ConfirmPayment(ctx, payment.ConfirmRequest{
		OrderID:  order.ID,
		Token:    token,
		Amount:   order.Total,
		Currency: order.Currency,
	})
	if errors.Is(err, payment.ErrNotFinal) {
		return &WebhookResult{OrderID: order.ID, Ignored: true, Order: order}, nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("provider", providerName).Str("order_id", order.ID).Msg("confirm payment failed")
		return nil, fmt.Errorf("%w: %s: %v", ErrPaymentProvider, providerName, err)
	}
	if data.OrderID != order.ID {
		return nil, validationf("payment token belongs to another order")
	}

	return s.ApplyPaymentOutcome(ctx, provider.Name(), data)
}

// RecordCashPayment marks a cash-on-delivery order paid without any provider.
// Calling it again for a paid order changes nothing.
func (s *orderServiceImpl) RecordCashPayment(ctx context.Context, orderID string) (*model.Order, error) {
	var clearedFor string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByID(ctx, tx, orderID)
		if err != nil {
			return lookupErr("order", err)
		}
		if order.PaymentMethod != model.PaymentMethodCash {
			return validationf("order %s is not a cash order", order.OrderNumber)
		}

		switch order.PaymentStatus {
		case model.PaymentStatusPaid:
			return nil
		case model.PaymentStatusRefunded:
			return fmt.Errorf("%w: order %s was refunded", ErrInvalidTransition, order.OrderNumber)
		}

		now := time.Now()
		_, err = s.paymentRepo.Create(ctx, tx, &model.Payment{
			ID:            uuid.NewString(),
			OrderID:       order.ID,
			Provider:      payment.CashProviderName,
			TransactionID: "cash-" + order.ID,
			Amount:        order.Total,
			Currency:      order.Currency,
			Method:        model.PaymentMethodCash,
			Status:        model.PaymentStatusPaid,
			CapturedAt:    &now,
		})
		if err != nil {
			return fmt.Errorf("store cash payment: %w", err)
		}

		first, err := s.markPaid(ctx, tx, order)
		if err != nil {
			return err
		}
		if first {
			clearedFor = order.CustomerID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if clearedFor != "" {
		s.invalidateCart(ctx, clearedFor)
		s.log.Info().Str("order_id", orderID).Msg("cash payment recorded")
	}

	return s.GetOrder(ctx, "", orderID)
}

func (s *orderServiceImpl) UpdateOrderStatus(ctx context.Context, orderID string, next model.OrderStatus, force bool) (*model.Order, error) {
	if !next.Valid() {
		return nil, validationf("unknown order status %q", next)
	}
	return s.updateStatus(ctx, orderID, "status", string(next), force, func(o *model.Order) (string, bool) {
		return string(o.Status), o.Status.CanTransitionTo(next)
	})
}

func (s *orderServiceImpl) UpdatePaymentStatus(ctx context.Context, orderID string, next model.PaymentStatus, force bool) (*model.Order, error) {
	if !next.Valid() {
		return nil, validationf("unknown payment status %q", next)
	}
	return s.updateStatus(ctx, orderID, "payment_status", string(next), force, func(o *model.Order) (string, bool) {
		return string(o.PaymentStatus), o.PaymentStatus.CanTransitionTo(next)
	})
}

func (s *orderServiceImpl) UpdateFulfillmentStatus(ctx context.Context, orderID string, next model.FulfillmentStatus, force bool) (*model.Order, error) {
	if !next.Valid() {
		return nil, validationf("unknown fulfillment status %q", next)
	}
	return s.updateStatus(ctx, orderID, "fulfillment_status", string(next), force, func(o *model.Order) (string, bool) {
		return string(o.FulfillmentStatus), o.FulfillmentStatus.CanTransitionTo(next)
	})
}

// updateStatus overwrites one status column. Transitions outside the table are
// rejected unless force is set; setting the current value is a no-op.
func (s *orderServiceImpl) updateStatus(
	ctx context.Context,
	orderID, column, next string,
	force bool,
	check func(*model.Order) (current string, allowed bool),
) (*model.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByID(ctx, tx, orderID)
		if err != nil {
			return lookupErr("order", err)
		}

		current, allowed := check(order)
		if current == next {
			return nil
		}
		if !allowed {
			if !force {
				return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, column, current, next)
			}
			s.log.Warn().
				Str("order_id", order.ID).
				Str("field", column).
				Str("from", current).
				Str("to", next).
				Msg("forced status transition")
		}

		return s.orderRepo.UpdateFields(ctx, tx, order.ID, map[string]interface{}{column: next})
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, "", orderID)
}

// RefundPayment refunds the latest captured payment through the provider that took it.
func (s *orderServiceImpl) RefundPayment(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.GetOrder(ctx, "", orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != model.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: payment status is %s", ErrInvalidTransition, order.PaymentStatus)
	}

	paid, err := s.paymentRepo.LatestPaid(ctx, order.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("order %s has no captured payment", order.OrderNumber)
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}

	provider, ok := s.providers.Get(paid.Provider)
	if !ok {
		return nil, fmt.Errorf("%w: payment provider %s", ErrNotFound, paid.Provider)
	}

	refunded, err := provider.RefundPayment(ctx, paid.TransactionID, paid.Amount, paid.Currency)
	if err != nil {
		s.log.Error().Err(err).Str("provider", paid.Provider).Str("order_id", order.ID).Msg("refund failed")
		return nil, fmt.Errorf("%w: %s: %v", ErrPaymentProvider, paid.Provider, err)
	}
	if !refunded {
		return nil, validationf("provider %s cannot refund payments", paid.Provider)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.UpdateStatus(ctx, tx, paid.ID, model.PaymentStatusRefunded); err != nil {
			return fmt.Errorf("mark payment refunded: %w", err)
		}
		return s.orderRepo.UpdateFields(ctx, tx, order.ID, map[string]interface{}{
			"payment_status": model.PaymentStatusRefunded,
			"status":         model.OrderStatusRefunded,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("order_id", order.ID).Str("transaction_id", paid.TransactionID).Msg("payment refunded")
	return s.GetOrder(ctx, "", orderID)
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, customerID, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, nil, orderID)
	if err != nil {
		return nil, lookupErr("order", err)
	}
	if customerID != "" && order.CustomerID != customerID {
		return nil, fmt.Errorf("%w: order", ErrNotFound)
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, customerID string) ([]*model.Order, error) {
	orders, err := s.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// markPaid applies the first transition to PAID: stock goes down once and the
// cart the order came from is emptied.
func (s *orderServiceImpl) markPaid(ctx context.Context, tx *gorm.DB, order *model.Order) (bool, error) {
	first, err := s.orderRepo.MarkPaid(ctx, tx, order.ID)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	if !first {
		return false, nil
	}
	if order.Status == model.OrderStatusCancelled {
		s.log.Warn().Str("order_id", order.ID).Msg("payment captured for a cancelled order")
	}

	for _, item := range order.Items {
		ok, err := s.inventoryRepo.DecrementStock(ctx, tx, item.VariantID, item.Quantity)
		if err != nil {
			return false, fmt.Errorf("decrement stock of %s: %w", item.SKU, err)
		}
		if !ok {
			s.log.Warn().
				Str("order_id", order.ID).
				Str("sku", item.SKU).
				Int("quantity", item.Quantity).
				Msg("paid order oversells variant")
		}
	}

	if err := s.cartRepo.ClearItems(ctx, tx, order.CartID); err != nil {
		return false, fmt.Errorf("clear cart: %w", err)
	}
	return true, nil
}

func (s *orderServiceImpl) invalidateCart(ctx context.Context, customerID string) {
	if err := s.cartCache.Delete(ctx, customerID); err != nil {
		s.log.Warn().Err(err).Str("customer_id", customerID).Msg("cart cache invalidation failed")
	}
}

func matchesOrder(order *model.Order, data *payment.WebhookData) error {
	if !data.Amount.Equal(order.Total) {
		return validationf("paid amount %s does not match order total %s", data.Amount.StringFixed(2), order.Total.StringFixed(2))
	}
	if data.Currency != "" && !strings.EqualFold(data.Currency, order.Currency) {
		return validationf("paid currency %s does not match order currency %s", data.Currency, order.Currency)
	}
	return nil
}

func newPayment(providerName string, order *model.Order, data *payment.WebhookData) *model.Payment {
	status := model.PaymentStatusFailed
	if data.Status == payment.OutcomePaid {
		status = model.PaymentStatusPaid
	}

	method := data.Method
	if method == "" {
		method = order.PaymentMethod
	}
	currency := data.Currency
	if currency == "" {
		currency = order.Currency
	}
	capturedAt := data.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	return &model.Payment{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		Provider:      providerName,
		TransactionID: data.TransactionID,
		Amount:        data.Amount,
		Currency:      strings.ToUpper(currency),
		Method:        method,
		Status:        status,
		CapturedAt:    &capturedAt,
	}
}
