package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCartTotals(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{Name: "Pallet A", Price: dec("20"), Quantity: 2},
		{Name: "Crate", Price: dec("7.5"), Quantity: 3},
	}}

	assert.Equal(t, 5, cart.Count())
	assert.True(t, cart.Total().Equal(dec("62.5")), "got %s", cart.Total())
	assert.Equal(t, "Pallet A x2 = $40\nCrate x3 = $22.5", cart.Summary())
}

func TestEmptyCart(t *testing.T) {
	var cart Cart

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.Count())
	assert.True(t, cart.Total().IsZero())
	assert.Equal(t, "", cart.Summary())
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"40", "40"},
		{"12.50", "12.5"},
		{"0.30", "0.3"},
		{"0", "0"},
		{"1000000", "1000000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(dec(tt.in)))
		})
	}
}

func TestDecimalArithmeticIsExact(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{Name: "a", Price: dec("0.1"), Quantity: 1},
		{Name: "b", Price: dec("0.2"), Quantity: 1},
	}}
	assert.Equal(t, "0.3", FormatAmount(cart.Total()))
}

func TestIndexHelpers(t *testing.T) {
	cart := Cart{Items: []CartItem{{Name: "a", Price: dec("1"), Quantity: 1}}}

	assert.Equal(t, 0, cart.IndexOf("a"))
	assert.Equal(t, -1, cart.IndexOf("A"), "names match exactly")
	assert.True(t, cart.InRange(0))
	assert.False(t, cart.InRange(1))
	assert.False(t, cart.InRange(-1))
}

func TestCloneIsIndependent(t *testing.T) {
	cart := Cart{Items: []CartItem{{Name: "a", Price: dec("1"), Quantity: 1}}}
	clone := cart.Clone()
	clone.Items[0].Quantity = 9

	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestValidate(t *testing.T) {
	ok := Cart{Items: []CartItem{{Name: "a", Price: dec("0"), Quantity: 1}}}
	assert.NoError(t, ok.Validate())

	bad := []Cart{
		{Items: []CartItem{{Name: "", Price: dec("1"), Quantity: 1}}},
		{Items: []CartItem{{Name: "a", Price: dec("-1"), Quantity: 1}}},
		{Items: []CartItem{{Name: "a", Price: dec("1"), Quantity: 0}}},
		{Items: []CartItem{{Name: "a", Price: dec("1"), Quantity: 1}, {Name: "a", Price: dec("1"), Quantity: 1}}},
	}
	for _, c := range bad {
		assert.Error(t, c.Validate())
	}
}

func TestNewOrderPayload(t *testing.T) {
	cart := Cart{Items: []CartItem{{Name: "Pallet A", Price: dec("20"), Quantity: 2}}}
	buyer := Buyer{Name: "Ana", Email: "ana@example.com", Phone: "555", Address: "Main St 1"}

	p := NewOrderPayload(buyer, cart)

	assert.Equal(t, buyer, p.Buyer)
	assert.Equal(t, "Pallet A x2 = $40", p.OrderSummary)
	assert.True(t, p.Total.Equal(dec("40")))
}
