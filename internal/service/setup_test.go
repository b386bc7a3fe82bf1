package service

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"storefront-api/internal/cache"
	"storefront-api/internal/client"
	"storefront-api/internal/config"
	"storefront-api/internal/model"
	"storefront-api/internal/payment"
	"storefront-api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	customerID     = "cust-1"
	testHMACSecret = "test-hmac-secret"
)

// spyProvider records every adapter call and answers with canned values.
type spyProvider struct {
	mu         sync.Mutex
	name       string
	calls      []string
	intentErr  error
	confirm    *payment.WebhookData
	refundOK   bool
	lastIntent payment.IntentRequest
}

func (p *spyProvider) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *spyProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *spyProvider) Name() string            { return p.name }
func (p *spyProvider) SignatureHeader() string { return "x-spy-signature" }

func (p *spyProvider) CreatePaymentIntent(_ context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	p.record("intent")
	p.lastIntent = req
	if p.intentErr != nil {
		return nil, p.intentErr
	}
	return &payment.Intent{RedirectURL: "https://pay.test/" + req.OrderID, Reference: "ref-" + req.OrderID}, nil
}

func (p *spyProvider) HandleWebhook(context.Context, []byte, string, http.Header) (*payment.WebhookData, error) {
	p.record("webhook")
	return nil, errors.New("not used")
}

func (p *spyProvider) RefundPayment(context.Context, string, decimal.Decimal, string) (bool, error) {
	p.record("refund")
	return p.refundOK, nil
}

func (p *spyProvider) ConfirmPayment(_ context.Context, req payment.ConfirmRequest) (*payment.WebhookData, error) {
	p.record("confirm")
	data := *p.confirm
	if data.OrderID == "" {
		data.OrderID = req.OrderID
	}
	return &data, nil
}

type testEnv struct {
	db          *gorm.DB
	spy         *spyProvider
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository

	carts    CartService
	checkout CheckoutService
	orders   OrderService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "storefront.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := client.InitDatabase(config.Database{Driver: "sqlite", URL: dsn})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestEnv(t *testing.T, cartCache cache.CartCache) *testEnv {
	t.Helper()

	db := newTestDB(t)
	if cartCache == nil {
		cartCache = cache.NopCartCache{}
	}

	spy := &spyProvider{name: "spy", refundOK: true}
	paymob := payment.NewPaymobProvider(nil, &config.Paymob{HMACSecret: testHMACSecret}, "http://shop.test")
	registry, err := payment.NewRegistry("spy", spy, paymob, payment.NewCashProvider())
	require.NoError(t, err)

	env := &testEnv{
		db:          db,
		spy:         spy,
		cartRepo:    repository.NewCartRepository(db),
		productRepo: repository.NewProductRepository(db),
		addressRepo: repository.NewAddressRepository(db),
		orderRepo:   repository.NewOrderRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
	}
	require.NoError(t, env.productRepo.Seed(context.Background()))

	log := zerolog.Nop()
	env.carts = NewCartService(env.cartRepo, env.productRepo, cartCache, log)
	env.checkout = NewCheckoutService(db, env.cartRepo, env.addressRepo, env.orderRepo, registry, "EGP", log)
	env.orders = NewOrderService(db, env.orderRepo, env.paymentRepo,
		repository.NewWebhookEventRepository(db), repository.NewInventoryRepository(db),
		env.cartRepo, cartCache, registry, log)

	return env
}

func (e *testEnv) address(t *testing.T, owner string) *model.Address {
	t.Helper()

	a := &model.Address{
		ID:         uuid.NewString(),
		CustomerID: owner,
		FullName:   "Mona Hassan",
		Email:      "mona@example.com",
		Line1:      "12 Tahrir St",
		City:       "Cairo",
		Country:    "EG",
	}
	require.NoError(t, e.addressRepo.Create(context.Background(), a))
	return a
}

// scenarioCart builds tshirt-black-m x2 at 50 and hoodie-grey-m x1 at 30.
func (e *testEnv) scenarioCart(t *testing.T) *model.Cart {
	t.Helper()
	ctx := context.Background()

	_, err := e.carts.AddItem(ctx, customerID, "", "tshirt-black-m", 2)
	require.NoError(t, err)
	cart, err := e.carts.AddItem(ctx, customerID, "", "hoodie-grey-m", 1)
	require.NoError(t, err)
	return cart
}

func (e *testEnv) checkoutScenario(t *testing.T, method model.PaymentMethod) *CheckoutResult {
	t.Helper()

	cart := e.scenarioCart(t)
	addr := e.address(t, customerID)

	res, err := e.checkout.Checkout(context.Background(), CheckoutInput{
		CustomerID:        customerID,
		CartID:            cart.ID,
		BillingAddressID:  addr.ID,
		ShippingAddressID: addr.ID,
		PaymentMethod:     method,
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) countPayments(t *testing.T, orderID string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(&model.Payment{}).Where("order_id = ?", orderID).Count(&n).Error)
	return n
}

func (e *testEnv) stock(t *testing.T, variantID string) int {
	t.Helper()

	v, err := e.productRepo.FindVariant(context.Background(), variantID)
	require.NoError(t, err)
	return v.Stock
}
