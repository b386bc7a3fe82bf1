package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"storefront-api/internal/client"
	"storefront-api/internal/model"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const PaypalSignatureHeader = "PAYPAL-TRANSMISSION-SIG"

type PaypalProvider struct {
	client  client.PaypalClient
	baseURL string
}

func NewPaypalProvider(c client.PaypalClient, baseURL string) *PaypalProvider {
	return &PaypalProvider{
		client:  c,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *PaypalProvider) Name() string            { return "paypal" }
func (p *PaypalProvider) SignatureHeader() string { return PaypalSignatureHeader }

func (p *PaypalProvider) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	res, err := p.client.CreateOrder(ctx, &client.PaypalOrderRequest{
		ReferenceID: req.OrderNumber,
		CustomID:    req.OrderID,
		Amount: model.PaypalAmount{
			Currency: req.Currency,
			Value:    req.Amount.StringFixed(2),
		},
		ReturnURL: p.baseURL + "/checkout/complete?orderId=" + req.OrderID,
		CancelURL: p.baseURL + "/checkout/cancel?orderId=" + req.OrderID,
	})
	if err != nil {
		return nil, err
	}
	if res.ApproveURL == "" {
		return nil, fmt.Errorf("paypal order %s has no approve link", res.OrderID)
	}

	return &Intent{
		RedirectURL: res.ApproveURL,
		Reference:   res.OrderID,
	}, nil
}

// HandleWebhook asks PayPal to verify the transmission before trusting the event.
func (p *PaypalProvider) HandleWebhook(ctx context.Context, raw []byte, signature string, headers http.Header) (*WebhookData, error) {
	if signature == "" {
		return nil, ErrSignatureInvalid
	}

	ok, err := p.client.VerifyWebhookSignature(ctx, headers, raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSignatureInvalid
	}

	var event model.PayPalWebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var status Outcome
	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		status = OutcomePaid
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED":
		status = OutcomeFailed
	default:
		return nil, fmt.Errorf("%w: event type %s", ErrNotFinal, event.EventType)
	}

	res := event.Resource
	return captureOutcome(status, res.ID, res.CustomID, res.Amount, res.CreateTime)
}

// ConfirmPayment captures an approved PayPal order. Token is the PayPal order id
// PayPal appends to the return URL.
func (p *PaypalProvider) ConfirmPayment(ctx context.Context, req ConfirmRequest) (*WebhookData, error) {
	result, err := p.client.CaptureOrder(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	for _, unit := range result.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			customID := capture.CustomID
			if customID == "" {
				customID = unit.CustomID
			}

			switch capture.Status {
			case "COMPLETED":
				return captureOutcome(OutcomePaid, capture.ID, customID, capture.Amount, capture.CreateTime)
			case "DECLINED", "FAILED":
				return captureOutcome(OutcomeFailed, capture.ID, customID, capture.Amount, capture.CreateTime)
			default:
				return nil, fmt.Errorf("%w: capture %s is %s", ErrNotFinal, capture.ID, capture.Status)
			}
		}
	}

	return nil, fmt.Errorf("%w: paypal order %s has no capture", ErrMalformedPayload, result.ID)
}

func (p *PaypalProvider) RefundPayment(ctx context.Context, transactionID string, amount decimal.Decimal, currency string) (bool, error) {
	err := p.client.RefundCapture(ctx, transactionID, model.PaypalAmount{
		Currency: currency,
		Value:    amount.StringFixed(2),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func captureOutcome(status Outcome, captureID, orderID string, amount model.PaypalAmount, createTime string) (*WebhookData, error) {
	if captureID == "" || orderID == "" {
		return nil, fmt.Errorf("%w: missing capture id or custom_id", ErrMalformedPayload)
	}

	value, err := decimal.NewFromString(amount.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q", ErrMalformedPayload, amount.Value)
	}

	capturedAt, err := time.Parse(time.RFC3339, createTime)
	if err != nil {
		capturedAt = time.Now()
	}

	return &WebhookData{
		OrderID:       orderID,
		TransactionID: captureID,
		Amount:        value,
		Currency:      amount.Currency,
		Status:        status,
		Method:        model.PaymentMethodWallet,
		CapturedAt:    capturedAt.UTC(),
	}, nil
}
