package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/cart/infra/store"
	"github.com/jcmexdev/pallet-shop/internal/pkg/kv"
)

// countingStore wraps the real store and counts writes.
type countingStore struct {
	*store.CartStore
	saves int
}

func (c *countingStore) Save(ctx context.Context, cart domain.Cart) error {
	c.saves++
	return c.CartStore.Save(ctx, cart)
}

type recorder struct {
	carts []domain.Cart
}

func (r *recorder) CartChanged(_ context.Context, cart domain.Cart) {
	r.carts = append(r.carts, cart.Clone())
}

func (r *recorder) last() domain.Cart { return r.carts[len(r.carts)-1] }

func newTestService(t *testing.T) (*CartService, *countingStore, *recorder) {
	t.Helper()
	st := &countingStore{CartStore: store.New(kv.NewMemory(), "test")}
	rec := &recorder{}
	return NewCartService(st, rec), st, rec
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// assertInvariants checks the badge and total against the stored cart.
func assertInvariants(t *testing.T, st *countingStore, rec *recorder) {
	t.Helper()
	stored, err := st.Load(context.Background())
	require.NoError(t, err)

	wantCount := 0
	wantTotal := decimal.Zero
	for _, it := range stored.Items {
		wantCount += it.Quantity
		wantTotal = wantTotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assert.Equal(t, wantCount, rec.last().Count(), "badge equals sum of quantities")
	assert.True(t, wantTotal.Equal(rec.last().Total()), "total equals sum of subtotals")
	assert.NoError(t, stored.Validate())
}

func TestAddSameNameTwiceKeepsFirstPrice(t *testing.T) {
	svc, st, rec := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "Pallet A", price("20"))
	require.NoError(t, err)
	cart, err := svc.Add(ctx, "Pallet A", price("25"))
	require.NoError(t, err)

	require.Equal(t, 1, cart.Len())
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].Price.Equal(price("20")))
	assertInvariants(t, st, rec)
}

func TestAddAppendsInInsertionOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, n := range []string{"c", "a", "b"} {
		_, err := svc.Add(ctx, n, price("1"))
		require.NoError(t, err)
	}
	cart, err := svc.Refresh(ctx)
	require.NoError(t, err)

	names := []string{}
	for _, it := range cart.Items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestAddRejectsInvalidItems(t *testing.T) {
	svc, st, rec := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "", price("1"))
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = svc.Add(ctx, "x", price("-0.01"))
	assert.ErrorIs(t, err, ErrInvalidItem)

	assert.Zero(t, st.saves)
	assert.Empty(t, rec.carts, "rejected input does not re-render")
}

func TestDecreaseQuantity(t *testing.T) {
	svc, st, rec := newTestService(t)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "a", price("3"))
	_, _ = svc.Add(ctx, "a", price("3"))

	cart, err := svc.DecreaseQuantity(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 1, cart.Len())
	assert.Equal(t, 1, cart.Items[0].Quantity, "quantity > 1 only decrements")
	assertInvariants(t, st, rec)

	cart, err = svc.DecreaseQuantity(ctx, 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty(), "quantity 1 removes the item")
	assertInvariants(t, st, rec)
}

func TestIncreaseQuantity(t *testing.T) {
	svc, st, rec := newTestService(t)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "a", price("2.5"))
	cart, err := svc.IncreaseQuantity(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "5", domain.FormatAmount(cart.Total()))
	assertInvariants(t, st, rec)
}

func TestRemoveShiftsIndexes(t *testing.T) {
	svc, st, rec := newTestService(t)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "first", price("1"))
	_, _ = svc.Add(ctx, "second", price("2"))

	cart, err := svc.Remove(ctx, 0)
	require.NoError(t, err)

	require.Equal(t, 1, cart.Len())
	assert.Equal(t, "second", cart.Items[0].Name)
	assertInvariants(t, st, rec)
}

func TestOutOfRangeIsSilentNoop(t *testing.T) {
	ops := map[string]func(*CartService, context.Context, int) (domain.Cart, error){
		"remove":   (*CartService).Remove,
		"increase": (*CartService).IncreaseQuantity,
		"decrease": (*CartService).DecreaseQuantity,
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			svc, st, rec := newTestService(t)
			ctx := context.Background()
			_, _ = svc.Add(ctx, "a", price("1"))
			savesBefore := st.saves

			for _, idx := range []int{-1, 1, 99} {
				cart, err := op(svc, ctx, idx)
				require.NoError(t, err)
				assert.Equal(t, 1, cart.Len())
				assert.Equal(t, 1, cart.Items[0].Quantity)
			}

			assert.Equal(t, savesBefore, st.saves, "no-op does not write")
			assert.Len(t, rec.carts, 4, "stale view is still redrawn")
		})
	}
}

func TestEveryMutationNotifies(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	_, _ = svc.Refresh(ctx)
	_, _ = svc.Add(ctx, "a", price("1"))
	_, _ = svc.IncreaseQuantity(ctx, 0)
	_, _ = svc.DecreaseQuantity(ctx, 0)
	_, _ = svc.Remove(ctx, 0)

	require.Len(t, rec.carts, 5)
	assert.True(t, rec.carts[0].IsEmpty())
	assert.Equal(t, 2, rec.carts[2].Count())
	assert.True(t, rec.last().IsEmpty())
}

func TestStateIsReloadedEveryOperation(t *testing.T) {
	slots := kv.NewMemory()
	svc := NewCartService(store.New(slots, ""), nil)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "a", price("1"))

	// another writer replaces the slot between operations
	require.NoError(t, slots.Set(ctx, "cart", []byte(`[{"name":"b","price":4,"quantity":3}]`)))

	cart, err := svc.IncreaseQuantity(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 1, cart.Len())
	assert.Equal(t, "b", cart.Items[0].Name)
	assert.Equal(t, 4, cart.Items[0].Quantity)
}

type failingStore struct{ err error }

func (f failingStore) Load(context.Context) (domain.Cart, error) { return domain.Cart{}, f.err }
func (f failingStore) Save(context.Context, domain.Cart) error     { return f.err }
func (f failingStore) Clear(context.Context) error                 { return f.err }

func TestStoreErrorsPropagate(t *testing.T) {
	down := errors.New("redis down")
	svc := NewCartService(failingStore{err: down}, nil)

	_, err := svc.Add(context.Background(), "a", price("1"))
	assert.ErrorIs(t, err, down)

	_, err = svc.Refresh(context.Background())
	assert.ErrorIs(t, err, down)
}
