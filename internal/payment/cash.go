package payment

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

const CashProviderName = "cash"

// CashProvider backs cash-on-delivery orders. Payment is recorded by staff, so
// there is no intent, no webhook and nothing to refund through a gateway.
type CashProvider struct{}

func NewCashProvider() *CashProvider {
	return &CashProvider{}
}

func (p *CashProvider) Name() string            { return CashProviderName }
func (p *CashProvider) SignatureHeader() string { return "" }

func (p *CashProvider) CreatePaymentIntent(context.Context, IntentRequest) (*Intent, error) {
	return nil, nil
}

func (p *CashProvider) HandleWebhook(context.Context, []byte, string, http.Header) (*WebhookData, error) {
	return nil, ErrUnsupported
}

func (p *CashProvider) RefundPayment(context.Context, string, decimal.Decimal, string) (bool, error) {
	return false, nil
}
