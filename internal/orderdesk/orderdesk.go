// Package orderdesk is a stand-in for the remote order endpoint. It accepts
// the JSON orders the storefront posts and keeps them in memory so a local
// setup can be exercised end to end.
package orderdesk

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is one received submission.
type Order struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	CartSummary string          `json:"cartSummary"`
	Total       decimal.Decimal `json:"total"`
	ReceivedAt  time.Time       `json:"received_at"`
}

type Desk struct {
	mu     sync.RWMutex
	orders map[string]Order
	now    func() time.Time
}

func New() *Desk {
	return &Desk{orders: make(map[string]Order), now: time.Now}
}

// Router serves POST / for submissions and GET /orders for inspection.
func (d *Desk) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/", d.Receive)
	r.Get("/orders", d.List)
	r.Get("/orders/{id}", d.Get)
	return r
}

func (d *Desk) Receive(w http.ResponseWriter, r *http.Request) {
	var o Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, "invalid order: "+err.Error(), http.StatusBadRequest)
		return
	}
	o.ID = uuid.NewString()
	o.ReceivedAt = d.now().UTC()

	d.mu.Lock()
	d.orders[o.ID] = o
	d.mu.Unlock()

	slog.InfoContext(r.Context(), "order received",
		"order_id", o.ID,
		"request_id", middleware.GetReqID(r.Context()),
		"total", o.Total.String(),
	)
	writeJSON(w, http.StatusCreated, o)
}

func (d *Desk) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, d.Orders())
}

func (d *Desk) Get(w http.ResponseWriter, r *http.Request) {
	d.mu.RLock()
	o, ok := d.orders[chi.URLParam(r, "id")]
	d.mu.RUnlock()
	if !ok {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Orders returns every received order, oldest first.
func (d *Desk) Orders() []Order {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Order, 0, len(d.orders))
	for _, o := range d.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
