package domain

import "github.com/shopspring/decimal"

// Buyer holds the checkout form fields as typed by the user.
type Buyer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// OrderPayload is the snapshot submitted once per checkout attempt.
// It is never persisted.
type OrderPayload struct {
	Buyer        Buyer
	OrderSummary string
	Total        decimal.Decimal
}

// NewOrderPayload flattens the buyer details and the current cart into a payload.
func NewOrderPayload(buyer Buyer, cart Cart) OrderPayload {
	return OrderPayload{
		Buyer:        buyer,
		OrderSummary: cart.Summary(),
		Total:        cart.Total(),
	}
}
