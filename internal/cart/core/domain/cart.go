package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CartItem is one selected product. Name is the identity of the item inside a cart.
type CartItem struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SummaryLine formats the item the way it appears in the order summary:
// "<name> x<quantity> = $<subtotal>".
func (i CartItem) SummaryLine() string {
	return fmt.Sprintf("%s x%d = $%s", i.Name, i.Quantity, FormatAmount(i.Subtotal()))
}

// Cart is the ordered, name-unique list of items. The zero value is an empty cart.
type Cart struct {
	Items []CartItem
}

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c Cart) Len() int { return len(c.Items) }

// Count is the badge number: the sum of all quantities.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Total is the sum of price x quantity over all items.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Summary is the plain-text order summary, one SummaryLine per item in cart order.
func (c Cart) Summary() string {
	lines := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, it.SummaryLine())
	}
	return strings.Join(lines, "\n")
}

// IndexOf returns the position of the item with the given name, or -1.
func (c Cart) IndexOf(name string) int {
	for i, it := range c.Items {
		if it.Name == name {
			return i
		}
	}
	return -1
}

// InRange reports whether index addresses an item of the cart.
func (c Cart) InRange(index int) bool {
	return index >= 0 && index < len(c.Items)
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	if c.Items == nil {
		return Cart{}
	}
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

// Validate checks the invariants a stored cart must hold.
func (c Cart) Validate() error {
	seen := make(map[string]struct{}, len(c.Items))
	for i, it := range c.Items {
		if it.Name == "" {
			return fmt.Errorf("item %d: empty name", i)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("item %q: negative price %s", it.Name, it.Price)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("item %q: non-positive quantity %d", it.Name, it.Quantity)
		}
		if _, dup := seen[it.Name]; dup {
			return fmt.Errorf("item %q: duplicate name", it.Name)
		}
		seen[it.Name] = struct{}{}
	}
	return nil
}

// FormatAmount prints an amount in its shortest plain decimal form: 40, 12.5, 0.3.
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}
