// Package checkout runs one checkout attempt from the user's submit to the
// order being placed or rejected.
//
// An attempt moves Idle -> Validating -> Submitting -> Success | Failed.
// Nothing is retried and nothing is compensated: a transport failure leaves
// the cart and the form as they were so the user can submit again.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/cart/core/ports"
	"github.com/jcmexdev/pallet-shop/internal/checkout/checkoutlog"
	"github.com/jcmexdev/pallet-shop/internal/checkout/transport"
	"github.com/jcmexdev/pallet-shop/internal/pkg/metrics"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// User-visible notices.
const (
	NoticeEmptyCart    = "Your cart is empty!"
	NoticeOrderPlaced  = "Order placed! Your receipt will download."
	NoticeNetworkError = "Network error. Please try again later."
)

// Session is the cart and page an attempt acts on. Form, Receipts and
// Notifier may be nil.
type Session struct {
	CartKey  string
	Store    ports.CartStore
	Notices  ports.Notices
	Form     ports.CheckoutForm
	Receipts ports.ReceiptSink
	Notifier ports.Notifier
}

// Result describes how an attempt ended. Receipt is set when a document was
// rendered and delivered.
type Result struct {
	AttemptID string
	State     State
	Payload   domain.OrderPayload
	Receipt   *ports.Document
}

// Pipeline submits carts to the order endpoint. It is safe for concurrent use
// across sessions.
type Pipeline struct {
	transport ports.OrderTransport
	renderer  ports.ReceiptRenderer
	guard     *Guard
	log       checkoutlog.Repository
	metrics   *metrics.ShopMetrics
	timeout   time.Duration
	tracer    trace.Tracer
}

type Option func(*Pipeline)

// WithGuard replaces the submit guard. A nil guard lets concurrent submits of
// the same cart through.
func WithGuard(g *Guard) Option {
	return func(p *Pipeline) { p.guard = g }
}

func WithLog(repo checkoutlog.Repository) Option {
	return func(p *Pipeline) { p.log = repo }
}

func WithMetrics(m *metrics.ShopMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTimeout bounds the POST to the order endpoint. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

func NewPipeline(t ports.OrderTransport, r ports.ReceiptRenderer, opts ...Option) *Pipeline {
	p := &Pipeline{
		transport: t,
		renderer:  r,
		guard:     NewGuard(),
		tracer:    otel.Tracer("github.com/jcmexdev/pallet-shop/internal/checkout"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit runs one attempt for buyer against the cart of s.
func (p *Pipeline) Submit(ctx context.Context, s Session, buyer domain.Buyer) (Result, error) {
	if s.Notices == nil {
		s.Notices = discardNotices{}
	}
	res := Result{AttemptID: uuid.NewString(), State: StateIdle}

	ctx, span := p.tracer.Start(ctx, "checkout.submit", trace.WithAttributes(
		attribute.String("checkout.attempt_id", res.AttemptID),
		attribute.String("cart.key", s.CartKey),
	))
	defer span.End()

	if p.guard != nil {
		if !p.guard.TryAcquire(s.CartKey) {
			slog.WarnContext(ctx, "checkout rejected, attempt already in flight", "cart_key", s.CartKey)
			p.metrics.Checkout("rejected")
			span.SetStatus(codes.Error, ErrSubmitInProgress.Error())
			return res, ErrSubmitInProgress
		}
		defer p.guard.Release(s.CartKey)
	}

	res.State = StateValidating
	p.record(ctx, s.CartKey, res, checkoutlog.StatusValidating, "", "")

	cart, err := s.Store.Load(ctx)
	if err != nil {
		return p.fail(ctx, span, s, res, fmt.Errorf("checkout: load cart: %w", err), "store_error")
	}
	if cart.IsEmpty() {
		s.Notices.Warn(NoticeEmptyCart)
		return p.fail(ctx, span, s, res, ErrEmptyCart, "empty_cart")
	}

	res.Payload = domain.NewOrderPayload(buyer, cart)
	res.State = StateSubmitting
	body, err := transport.EncodeOrder(res.Payload)
	if err != nil {
		slog.WarnContext(ctx, "checkout log payload not encoded", "attempt_id", res.AttemptID, "error", err)
	}
	p.record(ctx, s.CartKey, res, checkoutlog.StatusSubmitting, string(body), "")

	if err := p.send(ctx, res.Payload); err != nil {
		s.Notices.Error(NoticeNetworkError)
		return p.fail(ctx, span, s, res, &TransportError{Err: err}, "transport_error")
	}

	res.State = StateSuccess
	p.record(ctx, s.CartKey, res, checkoutlog.StatusSucceeded, "", "")
	p.metrics.Checkout("success")
	s.Notices.Confirm(NoticeOrderPlaced)

	runFollowUps(ctx, []followUp{
		{name: "receipt", run: func(ctx context.Context) error { return p.deliverReceipt(ctx, s, &res) }},
		{name: "clear_cart", run: func(ctx context.Context) error { return clearCart(ctx, s) }},
		{name: "reset_form", run: func(context.Context) error {
			if s.Form != nil {
				s.Form.Reset()
			}
			return nil
		}},
	})

	slog.InfoContext(ctx, "order placed",
		"attempt_id", res.AttemptID,
		"cart_key", s.CartKey,
		"total", domain.FormatAmount(res.Payload.Total),
	)
	return res, nil
}

func (p *Pipeline) send(ctx context.Context, payload domain.OrderPayload) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	err := p.transport.Send(ctx, payload)
	p.metrics.Submit(time.Since(start))
	return err
}

// deliverReceipt renders and hands over the receipt. res.Receipt is set only
// once the sink accepted the document. Errors never turn a placed order into
// a failure; they are recorded and returned to the caller for logging only.
func (p *Pipeline) deliverReceipt(ctx context.Context, s Session, res *Result) error {
	if p.renderer == nil {
		return nil
	}

	err := discardReceipt(ctx, s.Receipts)
	var doc ports.Document
	if err == nil {
		doc, err = p.renderer.Render(res.Payload)
	}
	if err == nil && s.Receipts != nil {
		err = s.Receipts.Deliver(ctx, doc)
	}
	if err != nil {
		p.metrics.Receipt(false)
		p.record(ctx, s.CartKey, *res, checkoutlog.StatusReceiptFailed, "", err.Error())
		return fmt.Errorf("checkout: receipt: %w", err)
	}
	res.Receipt = &doc
	p.metrics.Receipt(true)
	return nil
}

func discardReceipt(ctx context.Context, sink ports.ReceiptSink) error {
	d, ok := sink.(ports.ReceiptDiscarder)
	if !ok {
		return nil
	}
	if err := d.Discard(ctx); err != nil {
		return fmt.Errorf("discard previous receipt: %w", err)
	}
	return nil
}

func clearCart(ctx context.Context, s Session) error {
	if err := s.Store.Clear(ctx); err != nil {
		return fmt.Errorf("checkout: clear cart: %w", err)
	}
	if s.Notifier != nil {
		s.Notifier.CartChanged(ctx, domain.Cart{})
	}
	return nil
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, s Session, res Result, err error, outcome string) (Result, error) {
	res.State = StateFailed
	p.record(ctx, s.CartKey, res, checkoutlog.StatusFailed, "", err.Error())
	p.metrics.Checkout(outcome)

	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	slog.WarnContext(ctx, "checkout failed",
		"attempt_id", res.AttemptID,
		"cart_key", s.CartKey,
		"outcome", outcome,
		"error", err,
	)
	return res, err
}

// record writes one transition to the checkout log. A log that cannot be
// written never stops the attempt.
func (p *Pipeline) record(ctx context.Context, cartKey string, res Result, status checkoutlog.Status, payload, errText string) {
	slog.DebugContext(ctx, "checkout transition",
		"attempt_id", res.AttemptID,
		"cart_key", cartKey,
		"status", string(status),
	)
	if p.log == nil {
		return
	}
	entry := checkoutlog.NewEntry(ctx, res.AttemptID, cartKey, status, payload, errText)
	if err := p.log.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "checkout log write failed", "attempt_id", res.AttemptID, "error", err)
	}
}

type discardNotices struct{}

func (discardNotices) Warn(string)    {}
func (discardNotices) Confirm(string) {}
func (discardNotices) Error(string)   {}
