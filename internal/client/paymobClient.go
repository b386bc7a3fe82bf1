package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"storefront-api/internal/config"
	"time"
)

type PaymobClient interface {
	CreateIntention(ctx context.Context, req *PaymobIntentionRequest) (*PaymobIntention, error)
	Refund(ctx context.Context, transactionID string, amountCents int64) error
	CheckoutURL(clientSecret string) string
}

type PaymobItem struct {
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

type PaymobBillingData struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	PostalCode  string `json:"postal_code"`
}

type PaymobIntentionRequest struct {
	Amount           int64             `json:"amount"` // cents
	Currency         string            `json:"currency"`
	PaymentMethods   []int             `json:"payment_methods"`
	Items            []PaymobItem      `json:"items"`
	BillingData      PaymobBillingData `json:"billing_data"`
	SpecialReference string            `json:"special_reference"`
	NotificationURL  string            `json:"notification_url"`
	RedirectionURL   string            `json:"redirection_url"`
}

type PaymobIntention struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type paymobClientImpl struct {
	doer       *gatewayDoer
	baseApiURL string
	secretKey  string
	publicKey  string
}

func NewPaymobClient(paymobCfg *config.Paymob) PaymobClient {
	return &paymobClientImpl{
		doer: newGatewayDoer("paymob", &http.Client{
			Timeout: 30 * time.Second,
		}),
		baseApiURL: paymobCfg.BaseApiURL,
		secretKey:  paymobCfg.SecretKey,
		publicKey:  paymobCfg.PublicKey,
	}
}

func (c *paymobClientImpl) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return fmt.Errorf("paymob error %d: %s", resp.StatusCode, string(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode paymob response: %w", err)
	}
	return nil
}

func (c *paymobClientImpl) CreateIntention(ctx context.Context, in *PaymobIntentionRequest) (*PaymobIntention, error) {
	var intention PaymobIntention
	if err := c.post(ctx, "/v1/intention/", in, &intention); err != nil {
		return nil, fmt.Errorf("create paymob intention: %w", err)
	}
	if intention.ClientSecret == "" {
		return nil, fmt.Errorf("paymob intention %s returned no client secret", intention.ID)
	}

	return &intention, nil
}

func (c *paymobClientImpl) Refund(ctx context.Context, transactionID string, amountCents int64) error {
	payload := map[string]interface{}{
		"transaction_id": transactionID,
		"amount_cents":   amountCents,
	}

	if err := c.post(ctx, "/api/acceptance/void_refund/refund", payload, nil); err != nil {
		return fmt.Errorf("refund paymob transaction: %w", err)
	}
	return nil
}

func (c *paymobClientImpl) CheckoutURL(clientSecret string) string {
	q := url.Values{}
	q.Set("publicKey", c.publicKey)
	q.Set("clientSecret", clientSecret)
	return c.baseApiURL + "/unifiedcheckout/?" + q.Encode()
}
