package client

import (
	"context"
	"fmt"
	"storefront-api/internal/config"
	"time"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

// --- INTERFACE ---

type BraintreeClient interface {
	// GenerateClientToken returns the token the drop-in UI needs to tokenize a card or wallet
	GenerateClientToken(ctx context.Context) (string, error)

	// Sale charges a nonce for an order and submits it for settlement
	Sale(ctx context.Context, nonce, orderID string, amount decimal.Decimal) (*BraintreeTransaction, error)

	// ParseWebhook verifies bt_signature against bt_payload and decodes the notification
	ParseWebhook(signature, payload string) (*BraintreeNotification, error)

	Refund(ctx context.Context, transactionID string, amount decimal.Decimal) error
}

type BraintreeTransaction struct {
	ID       string
	OrderID  string
	Status   string
	Amount   decimal.Decimal
	Currency string
}

type BraintreeNotification struct {
	Kind        string
	Timestamp   time.Time
	Transaction *BraintreeTransaction
}

// --- IMPLEMENTATION ---

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

// NewBraintreeClient initializes the Braintree SDK gateway
func NewBraintreeClient(cfg *config.Braintree) BraintreeClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

// --- METHODS ---

func (c *braintreeClientImpl) GenerateClientToken(ctx context.Context) (string, error) {
	token, err := c.gateway.ClientToken().Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to generate client token: %w", err)
	}
	return token, nil
}

func (c *braintreeClientImpl) Sale(ctx context.Context, nonce, orderID string, amount decimal.Decimal) (*BraintreeTransaction, error) {
	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             toBraintreeDecimal(amount),
		PaymentMethodNonce: nonce,
		OrderId:            orderID,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true, // Captures the funds immediately
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("transaction creation failed: %w", err)
	}

	return fromBraintreeTransaction(tx), nil
}

func (c *braintreeClientImpl) ParseWebhook(signature, payload string) (*BraintreeNotification, error) {
	n, err := c.gateway.WebhookNotification().Parse(signature, payload)
	if err != nil {
		return nil, fmt.Errorf("parse webhook notification: %w", err)
	}

	out := &BraintreeNotification{
		Kind:      n.Kind,
		Timestamp: n.Timestamp,
	}
	if n.Subject != nil && n.Subject.Transaction != nil {
		out.Transaction = fromBraintreeTransaction(n.Subject.Transaction)
	}
	return out, nil
}

func (c *braintreeClientImpl) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) error {
	_, err := c.gateway.Transaction().Refund(ctx, transactionID, toBraintreeDecimal(amount))
	if err != nil {
		return fmt.Errorf("failed to refund transaction: %w", err)
	}
	return nil
}

// Braintree expects NewDecimal(unscaled, scale). For 2 decimal places:
// "50.00" * 100 = 5000 -> braintree.NewDecimal(5000, 2)
func toBraintreeDecimal(amount decimal.Decimal) *braintree.Decimal {
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	return braintree.NewDecimal(cents, 2)
}

func fromBraintreeTransaction(tx *braintree.Transaction) *BraintreeTransaction {
	out := &BraintreeTransaction{
		ID:       tx.Id,
		OrderID:  tx.OrderId,
		Status:   string(tx.Status),
		Currency: tx.CurrencyISOCode,
	}
	if tx.Amount != nil {
		out.Amount = decimal.New(tx.Amount.Unscaled, -int32(tx.Amount.Scale))
	}
	return out
}
