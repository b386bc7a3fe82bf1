package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"storefront-api/internal/client"
	"storefront-api/internal/config"
	"storefront-api/internal/model"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const PaymobSignatureHeader = "x-paymob-signature"

type paymobWebhook struct {
	Type string `json:"type"`
	Obj  struct {
		ID          int64  `json:"id"`
		Success     bool   `json:"success"`
		Pending     bool   `json:"pending"`
		AmountCents int64  `json:"amount_cents"`
		Currency    string `json:"currency"`
		CreatedAt   string `json:"created_at"`
		SourceData  struct {
			Type string `json:"type"`
		} `json:"source_data"`
		Order struct {
			ID              int64  `json:"id"`
			MerchantOrderID string `json:"merchant_order_id"`
		} `json:"order"`
	} `json:"obj"`
}

type PaymobProvider struct {
	client     client.PaymobClient
	hmacSecret string
	cardID     int
	walletID   int
	baseURL    string
}

func NewPaymobProvider(c client.PaymobClient, cfg *config.Paymob, baseURL string) *PaymobProvider {
	return &PaymobProvider{
		client:     c,
		hmacSecret: cfg.HMACSecret,
		cardID:     cfg.CardIntegrationID,
		walletID:   cfg.WalletIntegrationID,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (p *PaymobProvider) Name() string            { return "paymob" }
func (p *PaymobProvider) SignatureHeader() string { return PaymobSignatureHeader }

func (p *PaymobProvider) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	integrationID := p.cardID
	if req.Method == model.PaymentMethodWallet && p.walletID != 0 {
		integrationID = p.walletID
	}

	items := make([]client.PaymobItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, client.PaymobItem{
			Name:        it.Name,
			Amount:      toCents(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))),
			Description: it.SKU,
			Quantity:    it.Quantity,
		})
	}

	intention, err := p.client.CreateIntention(ctx, &client.PaymobIntentionRequest{
		Amount:           toCents(req.Amount),
		Currency:         req.Currency,
		PaymentMethods:   []int{integrationID},
		Items:            items,
		BillingData:      paymobBilling(req.Billing),
		SpecialReference: req.OrderID,
		NotificationURL:  p.baseURL + "/api/payment/webhook/paymob",
		RedirectionURL:   p.baseURL + "/checkout/complete?orderId=" + req.OrderID,
	})
	if err != nil {
		return nil, err
	}

	return &Intent{
		RedirectURL: p.client.CheckoutURL(intention.ClientSecret),
		Reference:   intention.ID,
	}, nil
}

func (p *PaymobProvider) HandleWebhook(_ context.Context, raw []byte, signature string, _ http.Header) (*WebhookData, error) {
	if !p.validSignature(raw, signature) {
		return nil, ErrSignatureInvalid
	}

	var event paymobWebhook
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if event.Type != "" && event.Type != "TRANSACTION" {
		return nil, fmt.Errorf("%w: event type %s", ErrNotFinal, event.Type)
	}

	obj := event.Obj
	if obj.ID == 0 || obj.Order.MerchantOrderID == "" || obj.Currency == "" {
		return nil, fmt.Errorf("%w: missing transaction, order or currency", ErrMalformedPayload)
	}
	if obj.Pending {
		return nil, fmt.Errorf("%w: transaction %d pending", ErrNotFinal, obj.ID)
	}

	status := OutcomeFailed
	if obj.Success {
		status = OutcomePaid
	}

	method := model.PaymentMethodCard
	if strings.EqualFold(obj.SourceData.Type, "wallet") {
		method = model.PaymentMethodWallet
	}

	return &WebhookData{
		OrderID:       obj.Order.MerchantOrderID,
		TransactionID: strconv.FormatInt(obj.ID, 10),
		Amount:        decimal.New(obj.AmountCents, -2),
		Currency:      strings.ToUpper(obj.Currency),
		Status:        status,
		Method:        method,
		CapturedAt:    parsePaymobTime(obj.CreatedAt),
	}, nil
}

func (p *PaymobProvider) RefundPayment(ctx context.Context, transactionID string, amount decimal.Decimal, _ string) (bool, error) {
	if err := p.client.Refund(ctx, transactionID, toCents(amount)); err != nil {
		return false, err
	}
	return true, nil
}

// validSignature checks a hex HMAC-SHA512 of the raw body.
func (p *PaymobProvider) validSignature(raw []byte, signature string) bool {
	if p.hmacSecret == "" || signature == "" {
		return false
	}

	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}

	return hmac.Equal(got, SignPaymob(p.hmacSecret, raw))
}

// SignPaymob computes the signature Paymob sends for a payload.
func SignPaymob(secret string, raw []byte) []byte {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(raw)
	return mac.Sum(nil)
}

func paymobBilling(a *model.OrderAddress) client.PaymobBillingData {
	if a == nil {
		return client.PaymobBillingData{
			FirstName: "NA", LastName: "NA", Email: "NA", PhoneNumber: "NA",
			Street: "NA", City: "NA", State: "NA", Country: "NA", PostalCode: "NA",
		}
	}

	first, last := a.FullName, "NA"
	if i := strings.LastIndex(a.FullName, " "); i > 0 {
		first, last = a.FullName[:i], a.FullName[i+1:]
	}

	return client.PaymobBillingData{
		FirstName:   orNA(first),
		LastName:    orNA(last),
		Email:       orNA(a.Email),
		PhoneNumber: orNA(a.Phone),
		Street:      orNA(a.Line1),
		City:        orNA(a.City),
		State:       orNA(a.State),
		Country:     orNA(a.Country),
		PostalCode:  orNA(a.PostalCode),
	}
}

func orNA(s string) string {
	if s == "" {
		return "NA"
	}
	return s
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func parsePaymobTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
