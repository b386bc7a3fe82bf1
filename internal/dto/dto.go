package dto

import (
	"storefront-api/internal/model"
	"time"

	"github.com/shopspring/decimal"
)

// Envelope wraps every JSON response.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Error      *string     `json:"error"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Timestamp  string      `json:"timestamp"`
}

type AddCartItemRequest struct {
	CartID    string `json:"cartId"`
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

type AddressRequest struct {
	FullName   string `json:"fullName" validate:"required,max=255"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2" validate:"omitempty,max=255"`
	City       string `json:"city" validate:"required,max=128"`
	State      string `json:"state" validate:"omitempty,max=128"`
	PostalCode string `json:"postalCode" validate:"omitempty,max=32"`
	Country    string `json:"country" validate:"required,len=2"`
}

type CheckoutRequest struct {
	BillingAddressID  string `json:"billingAddressId" validate:"required"`
	ShippingAddressID string `json:"shippingAddressId" validate:"required"`
	Currency          string `json:"currency" validate:"omitempty,len=3"`
	PaymentMethod     string `json:"paymentMethod" validate:"omitempty,oneof=CARD CASH WALLET"`
}

type CheckoutResponse struct {
	OrderID       string          `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"paymentMethod"`
	Provider      string          `json:"provider"`
	PaymentURL    *string         `json:"paymentUrl"`
	ClientToken   string          `json:"clientToken,omitempty"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED PROCESSING COMPLETED CANCELLED REFUNDED"`
	Force  bool   `json:"force"`
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required,oneof=UNPAID PAID FAILED REFUNDED"`
	Force         bool   `json:"force"`
}

type FulfillmentStatusRequest struct {
	FulfillmentStatus string `json:"fulfillmentStatus" validate:"required,oneof=UNFULFILLED SHIPPED DELIVERED"`
	Force             bool   `json:"force"`
}

type ConfirmPaymentRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Token   string `json:"token" validate:"required"`
}

type WebhookResponse struct {
	Message string `json:"message"`
}

type CartItemResponse struct {
	ID          string          `json:"id"`
	VariantID   string          `json:"variantId"`
	ProductName string          `json:"productName"`
	VariantName string          `json:"variantName"`
	SKU         string          `json:"sku"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type CartResponse struct {
	ID         string             `json:"id"`
	CustomerID string             `json:"customerId"`
	Items      []CartItemResponse `json:"items"`
	ItemCount  int                `json:"itemCount"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
}

func NewCartResponse(cart *model.Cart) *CartResponse {
	res := &CartResponse{
		ID:         cart.ID,
		CustomerID: cart.CustomerID,
		Items:      make([]CartItemResponse, 0, len(cart.Items)),
		Subtotal:   decimal.Zero,
	}

	for _, it := range cart.Items {
		line := CartItemResponse{
			ID:        it.ID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
		}
		if v := it.Variant; v != nil {
			line.ProductName = v.ProductName()
			line.VariantName = v.Name
			line.SKU = v.SKU
			line.UnitPrice = v.Price
			line.LineTotal = v.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}

		res.Items = append(res.Items, line)
		res.ItemCount += it.Quantity
		res.Subtotal = res.Subtotal.Add(line.LineTotal)
	}

	return res
}

type OrderItemResponse struct {
	VariantID   string          `json:"variantId"`
	ProductName string          `json:"productName"`
	VariantName string          `json:"variantName"`
	SKU         string          `json:"sku"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type OrderAddressResponse struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

type OrderResponse struct {
	ID                string                `json:"id"`
	OrderNumber       string                `json:"orderNumber"`
	Status            string                `json:"status"`
	PaymentStatus     string                `json:"paymentStatus"`
	FulfillmentStatus string                `json:"fulfillmentStatus"`
	PaymentMethod     string                `json:"paymentMethod"`
	Currency          string                `json:"currency"`
	Subtotal          decimal.Decimal       `json:"subtotal"`
	Total             decimal.Decimal       `json:"total"`
	Items             []OrderItemResponse   `json:"items"`
	BillingAddress    *OrderAddressResponse `json:"billingAddress"`
	ShippingAddress   *OrderAddressResponse `json:"shippingAddress"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

func NewOrderResponse(o *model.Order) *OrderResponse {
	res := &OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		Status:            o.Status.String(),
		PaymentStatus:     o.PaymentStatus.String(),
		FulfillmentStatus: o.FulfillmentStatus.String(),
		PaymentMethod:     o.PaymentMethod.String(),
		Currency:          o.Currency,
		Subtotal:          o.Subtotal,
		Total:             o.Total,
		Items:             make([]OrderItemResponse, 0, len(o.Items)),
		BillingAddress:    newOrderAddress(o.Address(model.AddressKindBilling)),
		ShippingAddress:   newOrderAddress(o.Address(model.AddressKindShipping)),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}

	for _, it := range o.Items {
		res.Items = append(res.Items, OrderItemResponse{
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			VariantName: it.VariantName,
			SKU:         it.SKU,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal,
		})
	}

	return res
}

func NewOrderResponses(orders []*model.Order) []*OrderResponse {
	res := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, NewOrderResponse(o))
	}
	return res
}

func newOrderAddress(a *model.OrderAddress) *OrderAddressResponse {
	if a == nil {
		return nil
	}
	return &OrderAddressResponse{
		FullName:   a.FullName,
		Email:      a.Email,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
