package view

import (
	"bytes"
	"html/template"
	"strconv"
)

// SlotCart names the page insertion point the cart block is rendered into.
const SlotCart = "cart"

var cartTemplate = template.Must(template.New(SlotCart).Parse(`
{{- if .Empty -}}
<p>{{ .EmptyText }}</p>
{{- else -}}
{{- range .Lines }}
<div class="cart-item">
  <span>{{ .Name }} - ${{ .UnitPrice }} × {{ .Quantity }} = ${{ .Subtotal }}</span>
  <div class="qty-controls">
    <form method="post" action="/cart/{{ .Index }}/decrease"><button type="submit">−</button></form>
    <form method="post" action="/cart/{{ .Index }}/increase"><button type="submit">+</button></form>
    <form method="post" action="/cart/{{ .Index }}/remove"><button class="remove-btn" type="submit">×</button></form>
  </div>
</div>
{{- end }}
<hr><strong>Total: ${{ .Total }}</strong>
{{- end -}}
`))

// Fragments holds the rendered content of each page insertion point.
type Fragments struct {
	Count   string
	Cart    template.HTML
	Summary string
}

// RenderFragments renders v into the badge text, the cart block markup and the
// summary field value.
func RenderFragments(v View) (Fragments, error) {
	var buf bytes.Buffer
	data := struct {
		View
		EmptyText string
	}{View: v, EmptyText: EmptyText}

	if err := cartTemplate.Execute(&buf, data); err != nil {
		return Fragments{}, err
	}
	return Fragments{
		Count:   strconv.Itoa(v.Count),
		Cart:    template.HTML(buf.String()),
		Summary: v.Summary,
	}, nil
}
