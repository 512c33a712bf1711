// Package view projects a cart value into what the page shows. It never
// touches the store.
package view

import (
	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
)

// EmptyText replaces the item list when the cart has no items.
const EmptyText = "Your cart is empty."

// Line is one displayed cart item. Index is the item's current position and is
// what the increase, decrease and remove affordances send back.
type Line struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

// View is the display state of a cart.
type View struct {
	Count   int    `json:"count"`
	Empty   bool   `json:"empty"`
	Lines   []Line `json:"lines"`
	Total   string `json:"total,omitempty"`
	Summary string `json:"summary"`
}

// Project builds the view of cart. An empty cart has no lines and no total.
func Project(cart domain.Cart) View {
	v := View{
		Count:   cart.Count(),
		Empty:   cart.IsEmpty(),
		Lines:   make([]Line, 0, cart.Len()),
		Summary: cart.Summary(),
	}
	if v.Empty {
		return v
	}

	for i, it := range cart.Items {
		v.Lines = append(v.Lines, Line{
			Index:     i,
			Name:      it.Name,
			UnitPrice: domain.FormatAmount(it.Price),
			Quantity:  it.Quantity,
			Subtotal:  domain.FormatAmount(it.Subtotal()),
		})
	}
	v.Total = domain.FormatAmount(cart.Total())
	return v
}
