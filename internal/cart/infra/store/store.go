// Package store persists a cart in a single kv slot as a JSON array of
// {name, price, quantity} objects.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/cart/core/ports"
	"github.com/jcmexdev/pallet-shop/internal/pkg/kv"
)

// SlotNamespace prefixes every cart slot key.
const SlotNamespace = "cart"

var _ ports.CartStore = (*CartStore)(nil)

// CartStore binds one slot of a kv.Store to the cart codec.
type CartStore struct {
	slots kv.Store
	key   string
}

// New returns the store for the slot "cart:<name>" ("cart" when name is empty).
func New(slots kv.Store, name string) *CartStore {
	return &CartStore{slots: slots, key: kv.Key(SlotNamespace, name)}
}

func (s *CartStore) Key() string { return s.key }

// Load returns the stored cart. A missing or unparseable value yields an
// empty cart; only backend failures are returned as errors.
func (s *CartStore) Load(ctx context.Context) (domain.Cart, error) {
	raw, found, err := s.slots.Get(ctx, s.key)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("store: load %q: %w", s.key, err)
	}
	if !found {
		return domain.Cart{}, nil
	}

	cart, err := Decode(raw)
	if err != nil {
		slog.WarnContext(ctx, "stored cart unreadable, starting empty", "cart_key", s.key, "error", err)
		return domain.Cart{}, nil
	}
	return cart, nil
}

func (s *CartStore) Save(ctx context.Context, cart domain.Cart) error {
	raw, err := Encode(cart)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", s.key, err)
	}
	if err := s.slots.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("store: save %q: %w", s.key, err)
	}
	return nil
}

func (s *CartStore) Clear(ctx context.Context) error {
	if err := s.slots.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("store: clear %q: %w", s.key, err)
	}
	return nil
}

type itemRecord struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

// Encode serializes a cart. An empty cart encodes as "[]".
func Encode(cart domain.Cart) ([]byte, error) {
	records := make([]itemRecord, 0, len(cart.Items))
	for _, it := range cart.Items {
		records = append(records, itemRecord{
			Name:     it.Name,
			Price:    json.Number(it.Price.String()),
			Quantity: it.Quantity,
		})
	}
	return json.Marshal(records)
}

// Decode parses a stored cart and checks its invariants.
func Decode(raw []byte) (domain.Cart, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var records []itemRecord
	if err := dec.Decode(&records); err != nil {
		return domain.Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return domain.Cart{}, errors.New("decode cart: trailing data after array")
	}

	cart := domain.Cart{}
	for _, r := range records {
		price, err := decimal.NewFromString(r.Price.String())
		if err != nil {
			return domain.Cart{}, fmt.Errorf("decode cart: item %q price %q: %w", r.Name, r.Price, err)
		}
		cart.Items = append(cart.Items, domain.CartItem{Name: r.Name, Price: price, Quantity: r.Quantity})
	}
	if err := cart.Validate(); err != nil {
		return domain.Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}
