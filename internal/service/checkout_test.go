package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"storefront-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_Scenario130EGP(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	res := env.checkoutScenario(t, "")

	assert.True(t, res.Total.Equal(decimal.NewFromInt(130)), "total %s", res.Total)
	assert.Equal(t, "EGP", res.Currency)
	assert.Equal(t, model.PaymentMethodCard, res.PaymentMethod)
	assert.Equal(t, "spy", res.Provider)
	assert.Equal(t, "https://pay.test/"+res.OrderID, res.PaymentURL)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`), res.OrderNumber)

	order, err := env.orders.GetOrder(ctx, customerID, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, model.FulfillmentUnfulfilled, order.FulfillmentStatus)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "TS-BLK-M", order.Items[0].SKU)
	assert.Equal(t, "Cotton T-Shirt", order.Items[0].ProductName)
	assert.True(t, order.Items[0].LineTotal.Equal(decimal.NewFromInt(100)))
	require.Len(t, order.Addresses, 2)

	assert.True(t, env.spy.lastIntent.Amount.Equal(decimal.NewFromInt(130)))
	require.NotNil(t, env.spy.lastIntent.Billing)
	assert.Equal(t, "Cairo", env.spy.lastIntent.Billing.City)

	cart, err := env.carts.GetOrCreateCart(ctx, customerID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2, "cart stays until payment is confirmed")
}

func TestCheckout_SnapshotsDoNotFollowLiveData(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	res := env.checkoutScenario(t, "")

	require.NoError(t, env.db.Model(&model.Variant{}).Where("id = ?", "tshirt-black-m").Update("price", 99).Error)
	require.NoError(t, env.db.Model(&model.Address{}).Where("customer_id = ?", customerID).Update("city", "Giza").Error)

	order, err := env.orders.GetOrder(ctx, customerID, res.OrderID)
	require.NoError(t, err)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(50)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(130)))
	assert.Equal(t, "Cairo", order.Address(model.AddressKindShipping).City)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	cart, err := env.carts.GetOrCreateCart(ctx, customerID)
	require.NoError(t, err)
	addr := env.address(t, customerID)

	_, err = env.checkout.Checkout(ctx, CheckoutInput{
		CustomerID: customerID, CartID: cart.ID, BillingAddressID: addr.ID, ShippingAddressID: addr.ID,
	})
	assert.ErrorIs(t, err, ErrValidation)

	var orders int64
	require.NoError(t, env.db.Model(&model.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
	assert.Empty(t, env.spy.Calls())
}

func TestCheckout_Failures(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	cart := env.scenarioCart(t)
	mine := env.address(t, customerID)
	theirs := env.address(t, "someone-else")

	tests := []struct {
		name    string
		in      CheckoutInput
		wantErr error
	}{
		{"missing cart", CheckoutInput{CustomerID: customerID, CartID: "nope", BillingAddressID: mine.ID, ShippingAddressID: mine.ID}, ErrNotFound},
		{"foreign cart", CheckoutInput{CustomerID: "someone-else", CartID: cart.ID, BillingAddressID: theirs.ID, ShippingAddressID: theirs.ID}, ErrNotFound},
		{"missing billing address", CheckoutInput{CustomerID: customerID, CartID: cart.ID, BillingAddressID: "nope", ShippingAddressID: mine.ID}, ErrNotFound},
		{"foreign shipping address", CheckoutInput{CustomerID: customerID, CartID: cart.ID, BillingAddressID: mine.ID, ShippingAddressID: theirs.ID}, ErrValidation},
		{"bad currency", CheckoutInput{CustomerID: customerID, CartID: cart.ID, BillingAddressID: mine.ID, ShippingAddressID: mine.ID, Currency: "EURO"}, ErrValidation},
		{"bad method", CheckoutInput{CustomerID: customerID, CartID: cart.ID, BillingAddressID: mine.ID, ShippingAddressID: mine.ID, PaymentMethod: "BARTER"}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.checkout.Checkout(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, env.spy.Calls())
}

func TestCheckout_RevalidatesStock(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	cart := env.scenarioCart(t)
	addr := env.address(t, customerID)
	in := CheckoutInput{CustomerID: customerID, CartID: cart.ID, BillingAddressID: addr.ID, ShippingAddressID: addr.ID}

	require.NoError(t, env.db.Model(&model.Variant{}).Where("id = ?", "tshirt-black-m").Update("stock", 1).Error)
	_, err := env.checkout.Checkout(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, env.db.Model(&model.Variant{}).Where("id = ?", "tshirt-black-m").Update("stock", 10).Error)
	require.NoError(t, env.db.Model(&model.Variant{}).Where("id = ?", "hoodie-grey-m").Update("is_active", false).Error)
	_, err = env.checkout.Checkout(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckout_ProviderFailureKeepsPendingOrder(t *testing.T) {
	env := newTestEnv(t, nil)
	env.spy.intentErr = errors.New("gateway down")

	cart := env.scenarioCart(t)
	addr := env.address(t, customerID)

	_, err := env.checkout.Checkout(context.Background(), CheckoutInput{
		CustomerID: customerID, CartID: cart.ID, BillingAddressID: addr.ID, ShippingAddressID: addr.ID,
	})
	assert.ErrorIs(t, err, ErrPaymentProvider)

	var order model.Order
	require.NoError(t, env.db.First(&order).Error)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, order.PaymentStatus)

	cart, err = env.carts.GetOrCreateCart(context.Background(), customerID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestCheckout_CashHasNoPaymentURL(t *testing.T) {
	env := newTestEnv(t, nil)

	res := env.checkoutScenario(t, model.PaymentMethodCash)

	assert.Equal(t, "cash", res.Provider)
	assert.Empty(t, res.PaymentURL)
	assert.Empty(t, res.ClientToken)
	assert.Equal(t, model.PaymentMethodCash, res.PaymentMethod)
	assert.Empty(t, env.spy.Calls())
}
