package model

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "UNFULFILLED"
	FulfillmentShipped     FulfillmentStatus = "SHIPPED"
	FulfillmentDelivered   FulfillmentStatus = "DELIVERED"
)

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodWallet PaymentMethod = "WALLET"
)

var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {
		OrderStatusConfirmed: true,
		OrderStatusCancelled: true,
	},
	OrderStatusConfirmed: {
		OrderStatusProcessing: true,
		OrderStatusCancelled:  true,
	},
	OrderStatusProcessing: {
		OrderStatusCompleted: true,
		OrderStatusCancelled: true,
	},
	OrderStatusCompleted: {
		OrderStatusRefunded: true,
	},
	OrderStatusCancelled: {},
	OrderStatusRefunded:  {},
}

// paymentStatus follows the latest attempt, so FAILED may go back to UNPAID for a retry.
var paymentTransitions = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentStatusUnpaid: {
		PaymentStatusPaid:   true,
		PaymentStatusFailed: true,
	},
	PaymentStatusFailed: {
		PaymentStatusUnpaid: true,
		PaymentStatusPaid:   true,
	},
	PaymentStatusPaid: {
		PaymentStatusRefunded: true,
	},
	PaymentStatusRefunded: {},
}

var fulfillmentRank = map[FulfillmentStatus]int{
	FulfillmentUnfulfilled: 0,
	FulfillmentShipped:     1,
	FulfillmentDelivered:   2,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderTransitions[s][next]
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return paymentTransitions[s][next]
}

func (s FulfillmentStatus) Valid() bool {
	_, ok := fulfillmentRank[s]
	return ok
}

// CanTransitionTo allows forward moves only; skipping SHIPPED is allowed.
func (s FulfillmentStatus) CanTransitionTo(next FulfillmentStatus) bool {
	from, ok := fulfillmentRank[s]
	if !ok {
		return false
	}
	to, ok := fulfillmentRank[next]
	return ok && to > from
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodCash, PaymentMethodWallet:
		return true
	}
	return false
}

func (s OrderStatus) String() string       { return string(s) }
func (s PaymentStatus) String() string     { return string(s) }
func (s FulfillmentStatus) String() string { return string(s) }
func (m PaymentMethod) String() string     { return string(m) }
