package models

// OrderRequest is the body sent to the gateway's order endpoint. Amount is in
// minor units (paise).
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// PaymentOrder is the gateway's order handle returned to the client checkout
type PaymentOrder struct {
	ID       string            `json:"id"`
	Entity   string            `json:"entity,omitempty"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
	KeyID    string            `json:"keyId,omitempty"`
}

// GatewayErrorResponse is the error envelope returned by the gateway
type GatewayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Field       string `json:"field,omitempty"`
	} `json:"error"`
}

// PaymentView is the cached summary shown on the checkout page
type PaymentView struct {
	BookingID     string  `json:"bookingId"`
	UserID        string  `json:"userId"`
	ServiceName   string  `json:"serviceName"`
	Package       string  `json:"package,omitempty"`
	Amount        float64 `json:"amount"`
	AmountPaise   int64   `json:"amountPaise"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	InvoiceID     string  `json:"invoiceId,omitempty"`
	KeyID         string  `json:"keyId,omitempty"`
}
