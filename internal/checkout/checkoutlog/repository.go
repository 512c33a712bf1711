package checkoutlog

import "context"

// Repository persists checkout log entries. The table is append-only.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	// History returns every entry of an attempt, oldest first.
	History(ctx context.Context, attemptID string) ([]Entry, error)
}
