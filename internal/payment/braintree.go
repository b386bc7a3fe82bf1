package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"storefront-api/internal/client"
	"storefront-api/internal/model"
	"time"

	"github.com/shopspring/decimal"
)

type BraintreeProvider struct {
	client client.BraintreeClient
}

func NewBraintreeProvider(c client.BraintreeClient) *BraintreeProvider {
	return &BraintreeProvider{client: c}
}

func (p *BraintreeProvider) Name() string { return "braintree" }

// SignatureHeader is empty: Braintree posts bt_signature inside the form body.
func (p *BraintreeProvider) SignatureHeader() string { return "" }

func (p *BraintreeProvider) CreatePaymentIntent(ctx context.Context, _ IntentRequest) (*Intent, error) {
	token, err := p.client.GenerateClientToken(ctx)
	if err != nil {
		return nil, err
	}
	return &Intent{ClientToken: token}, nil
}

func (p *BraintreeProvider) HandleWebhook(_ context.Context, raw []byte, signature string, _ http.Header) (*WebhookData, error) {
	form, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if signature == "" {
		signature = form.Get("bt_signature")
	}
	payload := form.Get("bt_payload")
	if signature == "" || payload == "" {
		return nil, ErrSignatureInvalid
	}

	// The SDK checks the signature against our public key before decoding.
	n, err := p.client.ParseWebhook(signature, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	var status Outcome
	switch n.Kind {
	case "transaction_settled":
		status = OutcomePaid
	case "transaction_settlement_declined":
		status = OutcomeFailed
	default:
		return nil, fmt.Errorf("%w: notification kind %s", ErrNotFinal, n.Kind)
	}
	if n.Transaction == nil || n.Transaction.ID == "" || n.Transaction.OrderID == "" {
		return nil, fmt.Errorf("%w: notification without transaction", ErrMalformedPayload)
	}

	capturedAt := n.Timestamp
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	return braintreeOutcome(n.Transaction, status, capturedAt), nil
}

// ConfirmPayment charges the nonce produced by the drop-in UI.
func (p *BraintreeProvider) ConfirmPayment(ctx context.Context, req ConfirmRequest) (*WebhookData, error) {
	tx, err := p.client.Sale(ctx, req.Token, req.OrderID, req.Amount)
	if err != nil {
		return nil, err
	}
	if tx.OrderID == "" {
		tx.OrderID = req.OrderID
	}
	if tx.Currency == "" {
		tx.Currency = req.Currency
	}

	status := OutcomeFailed
	switch tx.Status {
	case "authorized", "submitted_for_settlement", "settling", "settled":
		status = OutcomePaid
	}

	return braintreeOutcome(tx, status, time.Now()), nil
}

func (p *BraintreeProvider) RefundPayment(ctx context.Context, transactionID string, amount decimal.Decimal, _ string) (bool, error) {
	if err := p.client.Refund(ctx, transactionID, amount); err != nil {
		return false, err
	}
	return true, nil
}

func braintreeOutcome(tx *client.BraintreeTransaction, status Outcome, capturedAt time.Time) *WebhookData {
	return &WebhookData{
		OrderID:       tx.OrderID,
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Status:        status,
		Method:        model.PaymentMethodCard,
		CapturedAt:    capturedAt.UTC(),
	}
}
