package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/pkg/kv"
)

func item(name, price string, qty int) domain.CartItem {
	return domain.CartItem{Name: name, Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestLoadMissingSlotIsEmpty(t *testing.T) {
	s := New(kv.NewMemory(), "")

	cart, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestLoadCorruptValueIsEmpty(t *testing.T) {
	cases := map[string]string{
		"not json":          `{oops`,
		"object":            `{"name":"a"}`,
		"string price":      `[{"name":"a","price":"x","quantity":1}]`,
		"zero quantity":     `[{"name":"a","price":1,"quantity":0}]`,
		"fraction quantity": `[{"name":"a","price":1,"quantity":1.5}]`,
		"negative price":    `[{"name":"a","price":-1,"quantity":1}]`,
		"empty name":        `[{"name":"","price":1,"quantity":1}]`,
		"duplicate name":    `[{"name":"a","price":1,"quantity":1},{"name":"a","price":2,"quantity":1}]`,
		"missing price":     `[{"name":"a","quantity":1}]`,
		"trailing garbage":  `[{"name":"Pallet A","price":20,"quantity":2}] }}not json`,
		"two arrays":        `[{"name":"a","price":1,"quantity":1}][]`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			slots := kv.NewMemory()
			require.NoError(t, slots.Set(context.Background(), "cart", []byte(raw)))

			cart, err := New(slots, "").Load(context.Background())
			require.NoError(t, err)
			assert.True(t, cart.IsEmpty())
		})
	}
}

func TestLoadReadsOriginalFormat(t *testing.T) {
	slots := kv.NewMemory()
	raw := `[{"name":"Pallet A","price":20,"quantity":2},{"name":"Crate","price":7.5,"quantity":1}]`
	require.NoError(t, slots.Set(context.Background(), "cart", []byte(raw)))

	cart, err := New(slots, "").Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, cart.Len())
	assert.Equal(t, "Pallet A", cart.Items[0].Name)
	assert.True(t, cart.Items[1].Price.Equal(decimal.RequireFromString("7.5")))
	assert.Equal(t, 3, cart.Count())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(kv.NewMemory(), "session-1")
	ctx := context.Background()
	want := domain.Cart{Items: []domain.CartItem{
		item("Pallet A", "20", 2),
		item("Euro Pallet", "12.50", 1),
		item("Tiny", "0.1", 30),
	}}

	require.NoError(t, s.Save(ctx, want))
	got, err := s.Load(ctx)
	require.NoError(t, err)

	require.Equal(t, want.Len(), got.Len())
	for i := range want.Items {
		assert.Equal(t, want.Items[i].Name, got.Items[i].Name)
		assert.True(t, want.Items[i].Price.Equal(got.Items[i].Price))
		assert.Equal(t, want.Items[i].Quantity, got.Items[i].Quantity)
	}

	// save(load()) leaves the stored text unchanged
	before, _, _ := s.slots.Get(ctx, s.Key())
	require.NoError(t, s.Save(ctx, got))
	after, _, _ := s.slots.Get(ctx, s.Key())
	assert.Equal(t, string(before), string(after))
}

func TestEncodeWritesNumbers(t *testing.T) {
	raw, err := Encode(domain.Cart{Items: []domain.CartItem{item("Pallet A", "20", 2)}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Pallet A","price":20,"quantity":2}]`, string(raw))

	raw, err = Encode(domain.Cart{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestClearRemovesSlot(t *testing.T) {
	slots := kv.NewMemory()
	s := New(slots, "abc")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, domain.Cart{Items: []domain.CartItem{item("a", "1", 1)}}))
	require.NoError(t, s.Clear(ctx))

	_, found, _ := slots.Get(ctx, "cart:abc")
	assert.False(t, found)

	cart, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

type brokenSlots struct{ kv.Store }

var errDown = errors.New("backend down")

func (brokenSlots) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDown }
func (brokenSlots) Set(context.Context, string, []byte) error         { return errDown }
func (brokenSlots) Delete(context.Context, string) error              { return errDown }

func TestBackendErrorsPropagate(t *testing.T) {
	s := New(brokenSlots{}, "")
	ctx := context.Background()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, errDown)
	assert.ErrorIs(t, s.Save(ctx, domain.Cart{}), errDown)
	assert.ErrorIs(t, s.Clear(ctx), errDown)
}

func TestDecodeAllowsTrailingWhitespace(t *testing.T) {
	cart, err := Decode([]byte("[{\"name\":\"a\",\"price\":1,\"quantity\":1}]\n  "))
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Count())
}
