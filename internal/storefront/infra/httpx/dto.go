package httpx

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type AddItemRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CheckoutRequest carries the buyer fields. A cartSummary sent by the client
// is ignored; the summary is always rebuilt from the stored cart.
type CheckoutRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	CartSummary string `json:"cartSummary,omitempty"`
}

type NoticeResponse struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type CheckoutResponse struct {
	AttemptID  string           `json:"attempt_id"`
	State      string           `json:"state"`
	Notices    []NoticeResponse `json:"notices"`
	Summary    string           `json:"summary,omitempty"`
	Total      string           `json:"total,omitempty"`
	ReceiptURL string           `json:"receipt_url,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AttemptResponse is the recorded history of one checkout attempt.
type AttemptResponse struct {
	AttemptID string          `json:"attempt_id"`
	Status    string          `json:"status"`
	Entries   []AttemptRecord `json:"entries"`
}

type AttemptRecord struct {
	Status    string          `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
	TraceID   string          `json:"trace_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
