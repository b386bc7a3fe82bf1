package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"storefront-api/internal/config"
	"storefront-api/internal/model"
	"time"
)

type PaypalClient interface {
	CreateOrder(ctx context.Context, req *PaypalOrderRequest) (*CreateOrderResponse, error)
	CaptureOrder(ctx context.Context, paypalOrderID string) (*model.PaypalOrderResult, error)
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) (bool, error)
	RefundCapture(ctx context.Context, captureID string, amount model.PaypalAmount) error
}

type PaypalOrderRequest struct {
	ReferenceID string // our order number
	CustomID    string // our order id, echoed back on captures
	Amount      model.PaypalAmount
	ReturnURL   string
	CancelURL   string
}

type CreateOrderResponse struct {
	OrderID    string
	ApproveURL string
}

type paypalClientImpl struct {
	doer               *gatewayDoer
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
	webhookID          string
}

func NewPaypalClient(paypalCfg *config.Paypal) PaypalClient {
	return &paypalClientImpl{
		doer: newGatewayDoer("paypal", &http.Client{
			Timeout: 30 * time.Second,
		}),
		baseApiURL:         paypalCfg.BaseApiURL,
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
		webhookID:          paypalCfg.WebhookID,
	}
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.doer.Do(req)
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", fmt.Errorf("paypal token error %d: %s", resp.StatusCode, string(resp.Body))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body, &res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) postJSON(ctx context.Context, path string, payload any, out any) error {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get paypal access token: %w", err)
	}

	var body []byte
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal req payload: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode paypal response: %w", err)
	}
	return nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, in *PaypalOrderRequest) (*CreateOrderResponse, error) {
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": in.ReferenceID,
				"custom_id":    in.CustomID,
				"amount":       in.Amount,
			},
		},
		"application_context": map[string]string{
			"return_url": in.ReturnURL,
			"cancel_url": in.CancelURL,
		},
	}

	var result model.PaypalOrderResult
	if err := c.postJSON(ctx, "/v2/checkout/orders", payload, &result); err != nil {
		return nil, fmt.Errorf("create paypal order: %w", err)
	}

	return &CreateOrderResponse{
		OrderID:    result.ID,
		ApproveURL: _extractApproveURL(result.Links),
	}, nil
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, paypalOrderID string) (*model.PaypalOrderResult, error) {
	var result model.PaypalOrderResult
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", paypalOrderID)
	if err := c.postJSON(ctx, path, nil, &result); err != nil {
		return nil, fmt.Errorf("capture paypal order: %w", err)
	}

	return &result, nil
}

func (c *paypalClientImpl) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) (bool, error) {
	payload := map[string]interface{}{
		"auth_algo":         headers.Get("PAYPAL-AUTH-ALGO"),
		"cert_url":          headers.Get("PAYPAL-CERT-URL"),
		"transmission_id":   headers.Get("PAYPAL-TRANSMISSION-ID"),
		"transmission_sig":  headers.Get("PAYPAL-TRANSMISSION-SIG"),
		"transmission_time": headers.Get("PAYPAL-TRANSMISSION-TIME"),
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	var result struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := c.postJSON(ctx, "/v1/notifications/verify-webhook-signature", payload, &result); err != nil {
		return false, fmt.Errorf("verify webhook signature: %w", err)
	}

	return result.VerificationStatus == "SUCCESS", nil
}

func (c *paypalClientImpl) RefundCapture(ctx context.Context, captureID string, amount model.PaypalAmount) error {
	payload := map[string]interface{}{
		"amount": amount,
	}

	path := fmt.Sprintf("/v2/payments/captures/%s/refund", captureID)
	if err := c.postJSON(ctx, path, payload, nil); err != nil {
		return fmt.Errorf("refund paypal capture: %w", err)
	}
	return nil
}

func _extractApproveURL(links []model.PaypalLink) string {
	for _, link := range links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}
