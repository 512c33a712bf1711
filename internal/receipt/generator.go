// Package receipt lays out the purchase receipt of a placed order.
package receipt

import (
	"fmt"
	"strings"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/cart/core/ports"
)

const (
	Title       = "Pallet Shop Receipt"
	Filename    = "pallet-shop-receipt.pdf"
	ContentType = "application/pdf"
)

// Layout in millimetres and points.
const (
	marginX     = 10.0
	top         = 10.0
	titleSize   = 14.0
	bodySize    = 12.0
	titleGap    = 10.0
	lineGap     = 8.0
	sectionGap  = 12.0
	totalSpacer = 4.0
)

// Generator renders receipts onto a fresh canvas per document.
type Generator struct {
	newCanvas func() Canvas
}

var _ ports.ReceiptRenderer = (*Generator)(nil)

// NewGenerator uses newCanvas to start every document. A nil newCanvas draws
// PDFs.
func NewGenerator(newCanvas func() Canvas) *Generator {
	if newCanvas == nil {
		newCanvas = func() Canvas { return NewPDFCanvas() }
	}
	return &Generator{newCanvas: newCanvas}
}

func (g *Generator) Render(p domain.OrderPayload) (ports.Document, error) {
	c := g.newCanvas()
	Draw(c, p)

	content, err := c.Bytes()
	if err != nil {
		return ports.Document{}, fmt.Errorf("receipt: render: %w", err)
	}
	return ports.Document{
		Filename:    Filename,
		ContentType: ContentType,
		Content:     content,
	}, nil
}

// Draw places the receipt text on c.
func Draw(c Canvas, p domain.OrderPayload) {
	y := top
	c.SetFontSize(titleSize)
	c.Text(marginX, y, Title)
	y += titleGap

	c.SetFontSize(bodySize)
	c.Text(marginX, y, "Name: "+p.Buyer.Name)
	y += lineGap
	c.Text(marginX, y, "Email: "+p.Buyer.Email)
	y += lineGap
	c.Text(marginX, y, "Phone: "+p.Buyer.Phone)
	y += lineGap
	c.Text(marginX, y, "Address: "+p.Buyer.Address)
	y += sectionGap

	c.Text(marginX, y, "Order Details:")
	y += lineGap
	for _, line := range strings.Split(p.OrderSummary, "\n") {
		c.Text(marginX, y, line)
		y += lineGap
	}

	y += totalSpacer
	c.Text(marginX, y, "Total: $"+domain.FormatAmount(p.Total))
}
