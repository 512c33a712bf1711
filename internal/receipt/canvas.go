package receipt

// Canvas is a page that text can be placed on. Coordinates are millimetres
// from the top-left corner; y is the text baseline.
type Canvas interface {
	SetFontSize(pt float64)
	Text(x, y float64, s string)
	// Bytes finishes the page and returns the encoded document.
	Bytes() ([]byte, error)
}
