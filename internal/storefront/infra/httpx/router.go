package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/pallet-shop/internal/pkg/metrics"
	"github.com/jcmexdev/pallet-shop/internal/storefront/infra/httpx/middlewares"
)

// NewRouter mounts the storefront routes. metricsHandler serves /metrics and
// may be nil; m may be nil.
func NewRouter(handler *Handler, m *metrics.ServerMetrics, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.Session)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middlewares.AccessLog(m))

	r.Get("/healthz", handler.Health)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Get("/", handler.Shop)
	r.Get("/checkout", handler.CheckoutPage)
	r.Post("/checkout", handler.SubmitCheckout)
	r.Get(receiptPath, handler.Receipt)

	r.Post("/cart/add", handler.AddToCart)
	r.Post("/cart/{index}/{op}", handler.ChangeItem)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cart", handler.GetCart)
		r.Post("/cart/items", handler.AddItem)
		r.Post("/checkout", handler.Checkout)
		r.Get("/checkout/{attemptID}", handler.CheckoutAttempt)
	})

	return otelhttp.NewHandler(r, "storefront")
}
