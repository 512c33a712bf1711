// Package catalog lists the products offered on the shop page.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

type Product struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
}

type Catalog struct {
	Products []Product
}

// Default is the built-in product list.
func Default() Catalog {
	return Catalog{Products: []Product{
		{Name: "Standard Pallet", Price: decimal.NewFromInt(20), Description: "1200 x 1000 mm, heat treated pine."},
		{Name: "Euro Pallet", Price: decimal.RequireFromString("12.50"), Description: "EPAL certified, 1200 x 800 mm."},
		{Name: "Half Pallet", Price: decimal.RequireFromString("9.75"), Description: "800 x 600 mm for retail displays."},
		{Name: "Plastic Pallet", Price: decimal.NewFromInt(45), Description: "Hygienic, washable, food safe."},
		{Name: "Pallet Collar", Price: decimal.RequireFromString("7.5"), Description: "Stackable wooden collar."},
	}}
}

// Load reads a JSON array of products from path. An empty path yields Default.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return Catalog{}, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	c := Catalog{Products: products}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (c Catalog) Validate() error {
	if len(c.Products) == 0 {
		return errors.New("catalog: no products")
	}
	seen := make(map[string]bool, len(c.Products))
	for _, p := range c.Products {
		switch {
		case p.Name == "":
			return errors.New("catalog: product without a name")
		case p.Price.IsNegative():
			return fmt.Errorf("catalog: %q has a negative price", p.Name)
		case seen[p.Name]:
			return fmt.Errorf("catalog: %q listed twice", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Find looks a product up by name.
func (c Catalog) Find(name string) (Product, bool) {
	for _, p := range c.Products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}
