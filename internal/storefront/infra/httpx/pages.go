package httpx

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/cart/core/ports"
	"github.com/jcmexdev/pallet-shop/internal/cart/view"
	"github.com/jcmexdev/pallet-shop/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{
	"shop":     parsePage("templates/shop.html"),
	"checkout": parsePage("templates/checkout.html"),
}

func parsePage(content string) *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/layout.html", content))
}

type notice struct {
	Kind string
	Text string
}

// pageNotices collects the notices of one response.
type pageNotices struct {
	list []notice
}

var _ ports.Notices = (*pageNotices)(nil)

func (n *pageNotices) Warn(msg string)    { n.list = append(n.list, notice{"warning", msg}) }
func (n *pageNotices) Confirm(msg string) { n.list = append(n.list, notice{"success", msg}) }
func (n *pageNotices) Error(msg string)   { n.list = append(n.list, notice{"error", msg}) }

func (n *pageNotices) response() []NoticeResponse {
	out := make([]NoticeResponse, 0, len(n.list))
	for _, it := range n.list {
		out = append(out, NoticeResponse{Kind: it.Kind, Text: it.Text})
	}
	return out
}

// pageForm is the checkout form as it will be echoed back to the browser.
type pageForm struct {
	domain.Buyer
}

var _ ports.CheckoutForm = (*pageForm)(nil)

func (f *pageForm) Reset() { f.Buyer = domain.Buyer{} }

type pageData struct {
	Title      string
	Fragments  view.Fragments
	Notices    []notice
	Products   []catalog.Product
	Form       domain.Buyer
	ReceiptURL string
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.ErrorContext(r.Context(), "render page failed", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
