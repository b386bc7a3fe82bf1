package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string    `gorm:"primaryKey;size:64;not null" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	Variants  []Variant `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Variant is the purchasable SKU of a product.
type Variant struct {
	ID        string          `gorm:"primaryKey;size:64;not null" json:"id"`
	ProductID string          `gorm:"size:64;index;not null" json:"productId"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	SKU       string          `gorm:"size:64;uniqueIndex;not null" json:"sku"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock     int             `gorm:"not null" json:"stock"`
	IsActive  bool            `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// ProductName is empty when the product was not preloaded.
func (v *Variant) ProductName() string {
	if v.Product == nil {
		return ""
	}
	return v.Product.Name
}

type Address struct {
	ID         string    `gorm:"primaryKey;size:64;not null" json:"id"`
	CustomerID string    `gorm:"size:64;index;not null" json:"customerId"`
	FullName   string    `gorm:"size:255;not null" json:"fullName"`
	Email      string    `gorm:"size:255" json:"email"`
	Phone      string    `gorm:"size:32" json:"phone"`
	Line1      string    `gorm:"size:255;not null" json:"line1"`
	Line2      string    `gorm:"size:255" json:"line2"`
	City       string    `gorm:"size:128;not null" json:"city"`
	State      string    `gorm:"size:128" json:"state"`
	PostalCode string    `gorm:"size:32" json:"postalCode"`
	Country    string    `gorm:"size:2;not null" json:"country"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Cart struct {
	ID         string     `gorm:"primaryKey;size:64;not null" json:"id"`
	CustomerID string     `gorm:"size:64;uniqueIndex;not null" json:"customerId"`
	Items      []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CartItem rows are unique per (cart, variant); adding the same variant again
// increments Quantity.
type CartItem struct {
	ID        string    `gorm:"primaryKey;size:64;not null" json:"id"`
	CartID    string    `gorm:"size:64;not null;uniqueIndex:idx_cart_variant,priority:1" json:"cartId"`
	VariantID string    `gorm:"size:64;not null;uniqueIndex:idx_cart_variant,priority:2" json:"variantId"`
	Variant   *Variant  `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Order struct {
	ID                string            `gorm:"primaryKey;size:64;not null"`
	OrderNumber       string            `gorm:"size:32;uniqueIndex;not null"`
	CustomerID        string            `gorm:"size:64;index;not null"`
	CartID            string            `gorm:"size:64;index;not null"`
	Status            OrderStatus       `gorm:"size:32;index;not null"`
	PaymentStatus     PaymentStatus     `gorm:"size:32;index;not null"`
	FulfillmentStatus FulfillmentStatus `gorm:"size:32;not null"`
	PaymentMethod     PaymentMethod     `gorm:"size:16;not null"`
	Currency          string            `gorm:"size:8;not null"`
	Subtotal          decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Total             decimal.Decimal   `gorm:"type:decimal(12,2);not null"` // sum of line totals, fixed at checkout
	Items             []OrderItem
	Addresses         []OrderAddress
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (o *Order) Address(kind AddressKind) *OrderAddress {
	for i := range o.Addresses {
		if o.Addresses[i].Kind == kind {
			return &o.Addresses[i]
		}
	}
	return nil
}

// OrderItem holds name, SKU and price as they were at checkout.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     string          `gorm:"size:64;index;not null"`
	VariantID   string          `gorm:"size:64;index;not null"`
	ProductName string          `gorm:"size:255;not null"`
	VariantName string          `gorm:"size:255;not null"`
	SKU         string          `gorm:"size:64;not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time
}

type AddressKind string

const (
	AddressKindBilling  AddressKind = "BILLING"
	AddressKindShipping AddressKind = "SHIPPING"
)

// OrderAddress is the order's own copy of a customer address.
type OrderAddress struct {
	ID         uint        `gorm:"primaryKey"`
	OrderID    string      `gorm:"size:64;not null;uniqueIndex:idx_order_address_kind,priority:1"`
	Kind       AddressKind `gorm:"size:16;not null;uniqueIndex:idx_order_address_kind,priority:2"`
	FullName   string      `gorm:"size:255;not null"`
	Email      string      `gorm:"size:255"`
	Phone      string      `gorm:"size:32"`
	Line1      string      `gorm:"size:255;not null"`
	Line2      string      `gorm:"size:255"`
	City       string      `gorm:"size:128;not null"`
	State      string      `gorm:"size:128"`
	PostalCode string      `gorm:"size:32"`
	Country    string      `gorm:"size:2;not null"`
	CreatedAt  time.Time
}

func SnapshotAddress(kind AddressKind, a *Address) OrderAddress {
	return OrderAddress{
		Kind:       kind,
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

type Payment struct {
	ID            string          `gorm:"primaryKey;size:64;not null"`
	OrderID       string          `gorm:"size:64;index;not null"`
	Provider      string          `gorm:"size:32;not null;uniqueIndex:idx_provider_tx,priority:1"`
	TransactionID string          `gorm:"size:128;not null;uniqueIndex:idx_provider_tx,priority:2"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency      string          `gorm:"size:8;not null"`
	Method        PaymentMethod   `gorm:"size:16;not null"`
	Status        PaymentStatus   `gorm:"size:32;index;not null"`
	CapturedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// WebhookEvent records every provider outcome already applied to an order.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:192;not null"` // provider:transaction id
	Provider    string `gorm:"size:32;index;not null"`
	Status      string `gorm:"size:32;not null"`
	OrderID     string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

func WebhookEventID(provider, transactionID string) string {
	return provider + ":" + transactionID
}

// All lists the tables managed by AutoMigrate.
func All() []any {
	return []any{
		&Product{},
		&Variant{},
		&Address{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&OrderAddress{},
		&Payment{},
		&WebhookEvent{},
	}
}
