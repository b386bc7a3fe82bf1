package payment

import (
	"context"
	"testing"

	"storefront-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	paymob := newTestPaymob(nil)
	cash := NewCashProvider()

	_, err := NewRegistry("paypal", paymob, cash)
	require.Error(t, err)

	r, err := NewRegistry("paymob", paymob, cash)
	require.NoError(t, err)

	assert.Same(t, paymob, r.Default())
	assert.Same(t, paymob, r.ForMethod(model.PaymentMethodCard))
	assert.Same(t, paymob, r.ForMethod(model.PaymentMethodWallet))
	assert.Same(t, cash, r.ForMethod(model.PaymentMethodCash))

	p, ok := r.Get("cash")
	require.True(t, ok)
	assert.Same(t, cash, p)
	_, ok = r.Get("stripe")
	assert.False(t, ok)
}

func TestCashProvider(t *testing.T) {
	p := NewCashProvider()
	ctx := context.Background()

	intent, err := p.CreatePaymentIntent(ctx, IntentRequest{OrderID: "o", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Nil(t, intent)

	_, err = p.HandleWebhook(ctx, []byte(`{}`), "sig", nil)
	assert.ErrorIs(t, err, ErrUnsupported)

	ok, err := p.RefundPayment(ctx, "cash-o", decimal.NewFromInt(10), "EGP")
	require.NoError(t, err)
	assert.False(t, ok)
}
