package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"storefront-api/internal/model"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	// ErrNotFinal marks events that carry no PAID/FAILED outcome (pending captures,
	// unrelated event types). They are acknowledged and ignored.
	ErrNotFinal    = errors.New("payment outcome not final")
	ErrUnsupported = errors.New("operation not supported by provider")
)

type Outcome string

const (
	OutcomePaid   Outcome = "PAID"
	OutcomeFailed Outcome = "FAILED"
)

type IntentItem struct {
	Name      string
	SKU       string
	UnitPrice decimal.Decimal
	Quantity  int
}

type IntentRequest struct {
	OrderID     string
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
	Method      model.PaymentMethod
	Items       []IntentItem
	Billing     *model.OrderAddress
}

// Intent is what the payer needs to complete the payment: a redirect URL or a
// client token for a drop-in UI. Reference is the provider's id for the intent.
type Intent struct {
	RedirectURL string
	ClientToken string
	Reference   string
}

// WebhookData is a provider outcome in normalized form.
type WebhookData struct {
	OrderID       string
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	Status        Outcome
	Method        model.PaymentMethod
	CapturedAt    time.Time
}

type Provider interface {
	Name() string
	// SignatureHeader names the request header carrying the webhook signature.
	SignatureHeader() string
	// CreatePaymentIntent returns nil for methods that need no redirect.
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// HandleWebhook verifies the signature before reading the payload.
	HandleWebhook(ctx context.Context, raw []byte, signature string, headers http.Header) (*WebhookData, error)
	RefundPayment(ctx context.Context, transactionID string, amount decimal.Decimal, currency string) (bool, error)
}

type ConfirmRequest struct {
	OrderID  string
	Token    string
	Amount   decimal.Decimal
	Currency string
}

// Confirmer is implemented by providers whose payer returns to the shop before
// the outcome is known (PayPal approval, Braintree nonce).
type Confirmer interface {
	ConfirmPayment(ctx context.Context, req ConfirmRequest) (*WebhookData, error)
}

type Registry struct {
	providers   map[string]Provider
	defaultName string
}

func NewRegistry(defaultName string, providers ...Provider) (*Registry, error) {
	r := &Registry{
		providers:   make(map[string]Provider, len(providers)),
		defaultName: defaultName,
	}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}

	if _, ok := r.providers[defaultName]; !ok {
		return nil, fmt.Errorf("default payment provider %q is not registered", defaultName)
	}
	return r, nil
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

func (r *Registry) Default() Provider {
	return r.providers[r.defaultName]
}

// ForMethod returns the cash adapter for CASH orders and the default provider otherwise.
func (r *Registry) ForMethod(method model.PaymentMethod) Provider {
	if method == model.PaymentMethodCash {
		if p, ok := r.providers[CashProviderName]; ok {
			return p
		}
	}
	return r.Default()
}
