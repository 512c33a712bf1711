// Package sqlite stores the checkout log in a SQLite file using the pure-Go
// modernc driver. WAL mode lets the storefront read history while an attempt
// is writing.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jcmexdev/pallet-shop/internal/checkout/checkoutlog"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkout_logs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    attempt_id  TEXT NOT NULL,
    cart_key    TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL,
    -- order JSON, only on SUBMITTING rows
    payload     TEXT,
    error       TEXT NOT NULL DEFAULT '',
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_logs_attempt ON checkout_logs(attempt_id, id);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_trace ON checkout_logs(trace_id);
`

// Repository is the SQLite implementation of checkoutlog.Repository.
type Repository struct {
	db *sql.DB
}

var _ checkoutlog.Repository = (*Repository)(nil)

// Open opens or creates the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/checkout.db")
func Open(path string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir for %q: %w", path, err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// NewRepository wraps an already prepared database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends one entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *checkoutlog.Entry) error {
	const q = `
		INSERT INTO checkout_logs
			(attempt_id, cart_key, status, payload, error, trace_id, span_id, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.AttemptID,
		entry.CartKey,
		string(entry.Status),
		nullableString(entry.Payload),
		entry.Error,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save checkout log for %q: %w", entry.AttemptID, err)
	}
	return nil
}

// History returns the entries of one attempt in write order.
func (r *Repository) History(ctx context.Context, attemptID string) ([]checkoutlog.Entry, error) {
	const q = `
		SELECT attempt_id, cart_key, status, COALESCE(payload,''), error,
		       trace_id, span_id, created_at
		FROM   checkout_logs
		WHERE  attempt_id = ?
		ORDER  BY id ASC`

	rows, err := r.db.QueryContext(ctx, q, attemptID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", attemptID, err)
	}
	defer rows.Close()

	var out []checkoutlog.Entry
	for rows.Next() {
		var e checkoutlog.Entry
		var createdAt string
		if err := rows.Scan(
			&e.AttemptID,
			&e.CartKey,
			&e.Status,
			&e.Payload,
			&e.Error,
			&e.TraceID,
			&e.SpanID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan checkout log: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", attemptID, err)
	}
	return out, nil
}

// nullableString stores NULL instead of '' for rows without a payload.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
