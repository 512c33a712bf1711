// Package checkoutlog defines the audit trail of checkout attempts.
//
// Every state a checkout attempt passes through is appended as one entry, so
// the log shows where an attempt stopped and which trace it belongs to.
package checkoutlog

import "time"

// Status is the state of a checkout attempt when the entry was written.
type Status string

const (
	StatusValidating    Status = "VALIDATING"
	StatusSubmitting    Status = "SUBMITTING"
	StatusSucceeded     Status = "SUCCEEDED"
	StatusFailed        Status = "FAILED"
	StatusReceiptFailed Status = "RECEIPT_FAILED"
)

// Entry is one row of the checkout_logs table.
type Entry struct {
	// AttemptID identifies one press of the submit button.
	AttemptID string

	// CartKey is the storage slot of the cart being checked out.
	CartKey string

	Status Status

	// Payload is the JSON order payload. Only SUBMITTING entries carry it.
	Payload string

	// Error holds the failure text of FAILED and RECEIPT_FAILED entries.
	Error string

	TraceID string
	SpanID  string

	CreatedAt time.Time
}
