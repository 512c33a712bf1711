package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/cart/core/service"
	"github.com/jcmexdev/pallet-shop/internal/cart/infra/store"
	"github.com/jcmexdev/pallet-shop/internal/cart/view"
	"github.com/jcmexdev/pallet-shop/internal/catalog"
	"github.com/jcmexdev/pallet-shop/internal/checkout"
	"github.com/jcmexdev/pallet-shop/internal/checkout/checkoutlog"
	"github.com/jcmexdev/pallet-shop/internal/pkg/kv"
	"github.com/jcmexdev/pallet-shop/internal/pkg/metrics"
	"github.com/jcmexdev/pallet-shop/internal/receipt"
	"github.com/jcmexdev/pallet-shop/internal/storefront/infra/httpx/middlewares"
)

const (
	receiptPath = "/receipt"

	noticeReceiptUnavailable = "Your receipt could not be generated."
)

// Handler serves the storefront pages and the cart API. Every request works
// on the cart of the caller's session.
type Handler struct {
	slots    kv.Store
	catalog  catalog.Catalog
	pipeline *checkout.Pipeline
	metrics  *metrics.ShopMetrics
	history  checkoutlog.Repository
	locks    *sessionLocks
}

type HandlerOption func(*Handler)

// WithCheckoutHistory serves GET /api/checkout/{attemptID} from repo.
func WithCheckoutHistory(repo checkoutlog.Repository) HandlerOption {
	return func(h *Handler) { h.history = repo }
}

// NewHandler wires the slot store shared by all sessions. m may be nil.
func NewHandler(slots kv.Store, cat catalog.Catalog, pipeline *checkout.Pipeline, m *metrics.ShopMetrics, opts ...HandlerOption) *Handler {
	h := &Handler{
		slots:    slots,
		catalog:  cat,
		pipeline: pipeline,
		metrics:  m,
		locks:    newSessionLocks(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) cartStore(ctx context.Context) *store.CartStore {
	return store.New(h.slots, middlewares.SessionID(ctx))
}

func (h *Handler) cartService(ctx context.Context) *service.CartService {
	return service.NewCartService(h.cartStore(ctx), nil, service.WithMetrics(h.metrics))
}

// mutate runs op on the caller's cart while holding the session lock.
func (h *Handler) mutate(ctx context.Context, op func(*service.CartService) (domain.Cart, error)) (domain.Cart, error) {
	unlock := h.locks.lock(middlewares.SessionID(ctx))
	defer unlock()
	return op(h.cartService(ctx))
}

// Shop renders the product list with the cart badge and cart block.
func (h *Handler) Shop(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService(r.Context()).Refresh(r.Context())
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}
	h.renderCartPage(w, r, http.StatusOK, "shop", cart, pageData{Title: "Shop", Products: h.catalog.Products})
}

// CheckoutPage renders the buyer form with the current cart.
func (h *Handler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService(r.Context()).Refresh(r.Context())
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}
	h.renderCartPage(w, r, http.StatusOK, "checkout", cart, pageData{Title: "Checkout"})
}

// AddToCart handles the product form's add button. A listed product is added
// at its catalog price whatever the form posted.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	name := r.PostForm.Get("name")
	price, err := h.formPrice(name, r.PostForm.Get("price"))
	if err != nil {
		http.Error(w, "invalid price", http.StatusBadRequest)
		return
	}

	_, err = h.mutate(r.Context(), func(s *service.CartService) (domain.Cart, error) {
		return s.Add(r.Context(), name, price)
	})
	if errors.Is(err, service.ErrInvalidItem) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}
	redirectBack(w, r)
}

func (h *Handler) formPrice(name, posted string) (decimal.Decimal, error) {
	if p, ok := h.catalog.Find(name); ok {
		return p.Price, nil
	}
	return decimal.NewFromString(posted)
}

// ChangeItem handles the increase, decrease and remove buttons of a line.
func (h *Handler) ChangeItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}

	var op func(*service.CartService, context.Context, int) (domain.Cart, error)
	switch chi.URLParam(r, "op") {
	case "increase":
		op = (*service.CartService).IncreaseQuantity
	case "decrease":
		op = (*service.CartService).DecreaseQuantity
	case "remove":
		op = (*service.CartService).Remove
	default:
		http.NotFound(w, r)
		return
	}

	if _, err := h.mutate(r.Context(), func(s *service.CartService) (domain.Cart, error) {
		return op(s, r.Context(), index)
	}); err != nil {
		h.storeFailure(w, r, err)
		return
	}
	redirectBack(w, r)
}

// SubmitCheckout handles the checkout form.
func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := &pageForm{Buyer: domain.Buyer{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Address: r.PostForm.Get("address"),
	}}
	notices := &pageNotices{}

	res, err := h.submit(r.Context(), form, notices)
	if err != nil && !isCheckoutOutcome(err) {
		h.storeFailure(w, r, err)
		return
	}
	receiptURL := receiptLink(res, notices)

	cart, loadErr := h.cartStore(r.Context()).Load(r.Context())
	if loadErr != nil {
		h.storeFailure(w, r, loadErr)
		return
	}
	data := pageData{Title: "Checkout", Notices: notices.list, Form: form.Buyer, ReceiptURL: receiptURL}
	h.renderCartPage(w, r, checkoutStatus(err), "checkout", cart, data)
}

// submit runs the pipeline detached from the request so a client hanging up
// does not abort an issued order.
func (h *Handler) submit(ctx context.Context, form *pageForm, notices *pageNotices) (checkout.Result, error) {
	ctx = context.WithoutCancel(ctx)
	st := h.cartStore(ctx)
	return h.pipeline.Submit(ctx, checkout.Session{
		CartKey:  st.Key(),
		Store:    st,
		Notices:  notices,
		Form:     form,
		Receipts: receipt.NewSlotSink(h.slots, middlewares.SessionID(ctx)),
	}, form.Buyer)
}

// Receipt downloads the latest receipt of the session.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	doc, found, err := receipt.NewSlotSink(h.slots, middlewares.SessionID(r.Context())).Latest(r.Context())
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}
	if !found {
		http.Error(w, "no receipt yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}

// GetCart returns the view of the session's cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService(r.Context()).Refresh(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view.Project(cart))
}

// AddItem is the JSON form of AddToCart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	cart, err := h.mutate(r.Context(), func(s *service.CartService) (domain.Cart, error) {
		return s.Add(r.Context(), req.Name, req.Price)
	})
	if errors.Is(err, service.ErrInvalidItem) {
		writeError(w, http.StatusBadRequest, "invalid_item", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view.Project(cart))
}

// Checkout is the JSON form of SubmitCheckout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	form := &pageForm{Buyer: domain.Buyer{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}}
	notices := &pageNotices{}

	res, err := h.submit(r.Context(), form, notices)
	receiptURL := receiptLink(res, notices)
	resp := CheckoutResponse{
		AttemptID:  res.AttemptID,
		State:      string(res.State),
		Notices:    notices.response(),
		ReceiptURL: receiptURL,
	}
	if res.Payload.OrderSummary != "" {
		resp.Summary = res.Payload.OrderSummary
		resp.Total = domain.FormatAmount(res.Payload.Total)
	}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, checkoutStatus(err), resp)
}

// receiptLink is the download link for a delivered receipt. A placed order
// whose receipt failed gets an error notice and no link.
func receiptLink(res checkout.Result, notices *pageNotices) string {
	if res.State != checkout.StateSuccess {
		return ""
	}
	if res.Receipt == nil {
		notices.Error(noticeReceiptUnavailable)
		return ""
	}
	return receiptPath
}

// CheckoutAttempt returns the logged transitions of one of the session's
// checkout attempts. Attempts of other sessions are reported as not found.
func (h *Handler) CheckoutAttempt(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "not_found", "checkout history is disabled")
		return
	}
	attemptID := chi.URLParam(r, "attemptID")
	entries, err := h.history.History(r.Context(), attemptID)
	if err != nil {
		slog.ErrorContext(r.Context(), "checkout history unavailable", "attempt_id", attemptID, "error", err)
		writeError(w, http.StatusInternalServerError, "history_unavailable", err.Error())
		return
	}
	if len(entries) == 0 || entries[0].CartKey != h.cartStore(r.Context()).Key() {
		writeError(w, http.StatusNotFound, "not_found", "checkout attempt not found")
		return
	}

	resp := AttemptResponse{AttemptID: attemptID, Status: string(entries[len(entries)-1].Status)}
	for _, e := range entries {
		rec := AttemptRecord{
			Status:    string(e.Status),
			Error:     e.Error,
			TraceID:   e.TraceID,
			CreatedAt: e.CreatedAt,
		}
		if e.Payload != "" {
			rec.Payload = json.RawMessage(e.Payload)
		}
		resp.Entries = append(resp.Entries, rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) renderCartPage(w http.ResponseWriter, r *http.Request, status int, page string, cart domain.Cart, data pageData) {
	fragments, err := view.RenderFragments(view.Project(cart))
	if err != nil {
		slog.ErrorContext(r.Context(), "render cart failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data.Fragments = fragments
	renderPage(w, r, status, page, data)
}

func (h *Handler) storeFailure(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "cart store unavailable",
		"session_id", middlewares.SessionID(r.Context()),
		"error", err,
	)
	http.Error(w, "cart storage unavailable", http.StatusInternalServerError)
}

// isCheckoutOutcome reports whether err is an expected way for an attempt to
// end, as opposed to a broken backend.
func isCheckoutOutcome(err error) bool {
	return errors.Is(err, checkout.ErrEmptyCart) ||
		errors.Is(err, checkout.ErrTransport) ||
		errors.Is(err, checkout.ErrSubmitInProgress)
}

func checkoutStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, checkout.ErrSubmitInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// redirectBack sends the browser to the local page it came from.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if ref, err := url.Parse(r.Referer()); err == nil && strings.HasPrefix(ref.Path, "/") && !strings.HasPrefix(ref.Path, "//") {
		target = ref.Path
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
