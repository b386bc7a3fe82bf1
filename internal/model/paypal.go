package model

type Payer struct {
	PayerID string `json:"payer_id"`
	Email   string `json:"email_address"`
}

type PaypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type PaypalAmount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type PaypalCapture struct {
	ID         string       `json:"id"`
	Status     string       `json:"status"`
	CustomID   string       `json:"custom_id"`
	CreateTime string       `json:"create_time"`
	Final      bool         `json:"final_capture"`
	Amount     PaypalAmount `json:"amount"`
}

type PaypalPayments struct {
	Captures []PaypalCapture `json:"captures"`
}

type PaypalPurchaseUnit struct {
	ReferenceID string         `json:"reference_id"`
	CustomID    string         `json:"custom_id"`
	Payments    PaypalPayments `json:"payments"`
}

// PaypalOrderResult is returned by create-order and capture-order calls.
type PaypalOrderResult struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	Links         []PaypalLink         `json:"links"`
	Payer         Payer                `json:"payer"`
	PurchaseUnits []PaypalPurchaseUnit `json:"purchase_units"`
}

type PaypalRelatedIDs struct {
	OrderID string `json:"order_id"`
}

type PaypalSupplementaryData struct {
	RelatedIDs PaypalRelatedIDs `json:"related_ids"`
}

// PaypalCaptureResource is the resource of PAYMENT.CAPTURE.* events.
type PaypalCaptureResource struct {
	ID                string                  `json:"id"`
	Status            string                  `json:"status"`
	CustomID          string                  `json:"custom_id"`
	CreateTime        string                  `json:"create_time"`
	Amount            PaypalAmount            `json:"amount"`
	SupplementaryData PaypalSupplementaryData `json:"supplementary_data"`
}

type PayPalWebhookEvent struct {
	ID           string                `json:"id"`
	EventType    string                `json:"event_type"`
	ResourceType string                `json:"resource_type"`
	CreateTime   string                `json:"create_time"`
	Resource     PaypalCaptureResource `json:"resource"`
}
