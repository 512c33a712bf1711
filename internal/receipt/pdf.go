package receipt

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// PDFCanvas draws on a single A4 page with the Helvetica core font.
type PDFCanvas struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
}

var _ Canvas = (*PDFCanvas)(nil)

func NewPDFCanvas() *PDFCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	return &PDFCanvas{
		pdf: pdf,
		// core fonts are cp1252; names typed by users are UTF-8
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *PDFCanvas) SetFontSize(pt float64) {
	c.pdf.SetFontSize(pt)
}

func (c *PDFCanvas) Text(x, y float64, s string) {
	c.pdf.Text(x, y, c.translate(s))
}

func (c *PDFCanvas) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt: write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
