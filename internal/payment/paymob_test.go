package payment

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-api/internal/client"
	"storefront-api/internal/config"
	"storefront-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHMACSecret = "paymob-hmac-secret"

func paymobPayload(success bool, sourceType string) []byte {
	return []byte(`{"type":"TRANSACTION","obj":{"id":4411,"success":` + boolStr(success) +
		`,"pending":false,"amount_cents":13000,"currency":"egp","created_at":"2024-05-01T10:20:30.123456",` +
		`"source_data":{"type":"` + sourceType + `"},"order":{"id":99,"merchant_order_id":"order-1"}}}`)
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func sign(raw []byte) string {
	return hex.EncodeToString(SignPaymob(testHMACSecret, raw))
}

func newTestPaymob(c client.PaymobClient) *PaymobProvider {
	return NewPaymobProvider(c, &config.Paymob{
		HMACSecret:          testHMACSecret,
		CardIntegrationID:   11,
		WalletIntegrationID: 22,
	}, "http://shop.test/")
}

func TestPaymobHandleWebhook_Paid(t *testing.T) {
	p := newTestPaymob(nil)
	raw := paymobPayload(true, "card")

	data, err := p.HandleWebhook(context.Background(), raw, sign(raw), nil)
	require.NoError(t, err)

	assert.Equal(t, "order-1", data.OrderID)
	assert.Equal(t, "4411", data.TransactionID)
	assert.True(t, data.Amount.Equal(decimal.NewFromInt(130)))
	assert.Equal(t, "EGP", data.Currency)
	assert.Equal(t, OutcomePaid, data.Status)
	assert.Equal(t, model.PaymentMethodCard, data.Method)
	assert.Equal(t, 2024, data.CapturedAt.Year())
}

func TestPaymobHandleWebhook_FailedWallet(t *testing.T) {
	p := newTestPaymob(nil)
	raw := paymobPayload(false, "wallet")

	data, err := p.HandleWebhook(context.Background(), raw, sign(raw), nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, data.Status)
	assert.Equal(t, model.PaymentMethodWallet, data.Method)
}

func TestPaymobHandleWebhook_RejectsBadSignature(t *testing.T) {
	p := newTestPaymob(nil)
	raw := paymobPayload(true, "card")

	tests := []struct {
		name      string
		signature string
	}{
		{"empty", ""},
		{"not hex", "zz-not-hex"},
		{"other secret", hex.EncodeToString(SignPaymob("other", raw))},
		{"signature of other body", sign([]byte(`{}`))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.HandleWebhook(context.Background(), raw, tt.signature, nil)
			assert.ErrorIs(t, err, ErrSignatureInvalid)
		})
	}
}

func TestPaymobHandleWebhook_MalformedAndPending(t *testing.T) {
	p := newTestPaymob(nil)

	raw := []byte(`{"obj":`)
	_, err := p.HandleWebhook(context.Background(), raw, sign(raw), nil)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	raw = []byte(`{"type":"TRANSACTION","obj":{"id":1,"success":true,"amount_cents":100,"currency":"EGP"}}`)
	_, err = p.HandleWebhook(context.Background(), raw, sign(raw), nil)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	raw = []byte(`{"type":"TRANSACTION","obj":{"id":1,"pending":true,"amount_cents":100,"currency":"EGP","order":{"merchant_order_id":"o"}}}`)
	_, err = p.HandleWebhook(context.Background(), raw, sign(raw), nil)
	assert.ErrorIs(t, err, ErrNotFinal)

	raw = []byte(`{"type":"TOKEN","obj":{}}`)
	_, err = p.HandleWebhook(context.Background(), raw, sign(raw), nil)
	assert.ErrorIs(t, err, ErrNotFinal)
}

func TestPaymobCreatePaymentIntent(t *testing.T) {
	var got client.PaymobIntentionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/intention/", r.URL.Path)
		assert.Equal(t, "Token sk_test", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"cs_1"}`))
	}))
	defer srv.Close()

	c := client.NewPaymobClient(&config.Paymob{BaseApiURL: srv.URL, SecretKey: "sk_test", PublicKey: "pk_test"})
	p := newTestPaymob(c)

	intent, err := p.CreatePaymentIntent(context.Background(), IntentRequest{
		OrderID:  "order-1",
		Amount:   decimal.NewFromInt(130),
		Currency: "EGP",
		Method:   model.PaymentMethodWallet,
		Items: []IntentItem{
			{Name: "Cotton T-Shirt", SKU: "TS-BLK-M", UnitPrice: decimal.NewFromInt(50), Quantity: 2},
			{Name: "Fleece Hoodie", SKU: "HD-GRY-M", UnitPrice: decimal.NewFromInt(30), Quantity: 1},
		},
		Billing: &model.OrderAddress{FullName: "Mona Adel Hassan", City: "Cairo", Country: "EG"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_1", intent.Reference)
	assert.Equal(t, srv.URL+"/unifiedcheckout/?clientSecret=cs_1&publicKey=pk_test", intent.RedirectURL)

	assert.EqualValues(t, 13000, got.Amount)
	assert.Equal(t, []int{22}, got.PaymentMethods)
	assert.Equal(t, "order-1", got.SpecialReference)
	assert.Equal(t, "http://shop.test/api/payment/webhook/paymob", got.NotificationURL)
	require.Len(t, got.Items, 2)
	assert.EqualValues(t, 10000, got.Items[0].Amount)
	assert.Equal(t, "Mona Adel", got.BillingData.FirstName)
	assert.Equal(t, "Hassan", got.BillingData.LastName)
	assert.Equal(t, "NA", got.BillingData.Email)
}

func TestPaymobCreatePaymentIntent_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"bad integration"}`))
	}))
	defer srv.Close()

	p := newTestPaymob(client.NewPaymobClient(&config.Paymob{BaseApiURL: srv.URL}))

	_, err := p.CreatePaymentIntent(context.Background(), IntentRequest{OrderID: "o", Amount: decimal.NewFromInt(1), Currency: "EGP"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad integration")
}
