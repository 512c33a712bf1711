package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/cart/core/ports"
	"github.com/jcmexdev/pallet-shop/internal/pkg/metrics"
)

// ErrInvalidItem is returned by Add for an empty name or a negative price.
var ErrInvalidItem = errors.New("invalid cart item")

// CartService is the only writer of a cart. Every operation reloads the cart
// from the store, mutates it, saves it back and notifies the renderer.
// Index-based operations address the item's current position; callers must
// re-render after each call because positions shift on removal.
type CartService struct {
	store    ports.CartStore
	notifier ports.Notifier
	metrics  *metrics.ShopMetrics
}

type Option func(*CartService)

func WithMetrics(m *metrics.ShopMetrics) Option {
	return func(s *CartService) { s.metrics = m }
}

// NewCartService wires the store and the renderer notifier. notifier may be nil.
func NewCartService(store ports.CartStore, notifier ports.Notifier, opts ...Option) *CartService {
	if notifier == nil {
		notifier = ports.NotifierFunc(func(context.Context, domain.Cart) {})
	}
	s := &CartService{store: store, notifier: notifier}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh loads the cart and notifies the renderer without changing anything.
// It is the page-load event.
func (s *CartService) Refresh(ctx context.Context) (domain.Cart, error) {
	cart, err := s.store.Load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	s.notifier.CartChanged(ctx, cart)
	return cart, nil
}

// Add puts one unit of name into the cart. A repeated name only increments the
// quantity; the price stored first stays authoritative.
func (s *CartService) Add(ctx context.Context, name string, price decimal.Decimal) (domain.Cart, error) {
	if name == "" {
		return domain.Cart{}, fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if price.IsNegative() {
		return domain.Cart{}, fmt.Errorf("%w: price must be >= 0", ErrInvalidItem)
	}

	return s.mutate(ctx, "add", func(cart *domain.Cart) bool {
		if i := cart.IndexOf(name); i >= 0 {
			cart.Items[i].Quantity++
			return true
		}
		cart.Items = append(cart.Items, domain.CartItem{Name: name, Price: price, Quantity: 1})
		return true
	})
}

// Remove deletes the item at index. An out-of-range index is a no-op.
func (s *CartService) Remove(ctx context.Context, index int) (domain.Cart, error) {
	return s.mutate(ctx, "remove", func(cart *domain.Cart) bool {
		if !cart.InRange(index) {
			return false
		}
		cart.Items = append(cart.Items[:index], cart.Items[index+1:]...)
		return true
	})
}

// IncreaseQuantity adds one unit to the item at index.
func (s *CartService) IncreaseQuantity(ctx context.Context, index int) (domain.Cart, error) {
	return s.mutate(ctx, "increase", func(cart *domain.Cart) bool {
		if !cart.InRange(index) {
			return false
		}
		cart.Items[index].Quantity++
		return true
	})
}

// DecreaseQuantity takes one unit from the item at index, removing the item
// when its quantity would drop to zero.
func (s *CartService) DecreaseQuantity(ctx context.Context, index int) (domain.Cart, error) {
	return s.mutate(ctx, "decrease", func(cart *domain.Cart) bool {
		if !cart.InRange(index) {
			return false
		}
		if cart.Items[index].Quantity > 1 {
			cart.Items[index].Quantity--
			return true
		}
		cart.Items = append(cart.Items[:index], cart.Items[index+1:]...)
		return true
	})
}

// mutate runs one read-modify-write cycle. apply reports whether it changed
// the cart; unchanged carts are not written back but are still re-rendered.
func (s *CartService) mutate(ctx context.Context, op string, apply func(*domain.Cart) bool) (domain.Cart, error) {
	ctx, span := otel.Tracer("github.com/jcmexdev/pallet-shop/internal/cart").Start(ctx, "cart."+op)
	defer span.End()

	cart, err := s.store.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return domain.Cart{}, fmt.Errorf("cart %s: %w", op, err)
	}

	if !apply(&cart) {
		slog.DebugContext(ctx, "cart mutation ignored, index out of range", "op", op, "items", cart.Len())
		s.metrics.Mutation(op, "noop")
		s.notifier.CartChanged(ctx, cart)
		return cart, nil
	}

	if err := s.store.Save(ctx, cart); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return domain.Cart{}, fmt.Errorf("cart %s: %w", op, err)
	}
	span.SetAttributes(attribute.Int("cart.items", cart.Len()), attribute.Int("cart.count", cart.Count()))
	s.metrics.Mutation(op, "applied")
	s.notifier.CartChanged(ctx, cart)
	return cart, nil
}
