package ports

import (
	"context"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
)

// CartStore is the durable slot holding one serialized cart.
// Load never fails on a missing or unreadable value; it returns an empty cart instead.
// The error return is for the backend itself being unavailable.
type CartStore interface {
	Load(ctx context.Context) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
	Clear(ctx context.Context) error
}

// Notifier is told about the cart after every mutation and at start-up so the
// page can be redrawn. It only ever receives a value, never the store.
type Notifier interface {
	CartChanged(ctx context.Context, cart domain.Cart)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, cart domain.Cart)

func (f NotifierFunc) CartChanged(ctx context.Context, cart domain.Cart) { f(ctx, cart) }

// OrderTransport delivers a payload to the remote order endpoint. A nil error
// means the transport completed; nothing about the remote outcome is known.
type OrderTransport interface {
	Send(ctx context.Context, payload domain.OrderPayload) error
}

// Document is a generated file offered for download.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReceiptRenderer turns a submitted payload into a document.
type ReceiptRenderer interface {
	Render(payload domain.OrderPayload) (Document, error)
}

// ReceiptSink offers a generated document to the user.
type ReceiptSink interface {
	Deliver(ctx context.Context, doc Document) error
}

// ReceiptDiscarder is implemented by sinks that keep the last delivered
// document around. Discard drops it so a failed attempt never exposes the
// receipt of an earlier order.
type ReceiptDiscarder interface {
	Discard(ctx context.Context) error
}

// Notices shows user-visible messages.
type Notices interface {
	Warn(msg string)
	Confirm(msg string)
	Error(msg string)
}

// CheckoutForm is the buyer input form owned by the page.
type CheckoutForm interface {
	Reset()
}
