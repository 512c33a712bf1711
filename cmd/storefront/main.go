package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jcmexdev/pallet-shop/internal/catalog"
	"github.com/jcmexdev/pallet-shop/internal/checkout"
	checkoutsqlite "github.com/jcmexdev/pallet-shop/internal/checkout/checkoutlog/sqlite"
	"github.com/jcmexdev/pallet-shop/internal/checkout/transport"
	"github.com/jcmexdev/pallet-shop/internal/pkg/config"
	"github.com/jcmexdev/pallet-shop/internal/pkg/kv"
	"github.com/jcmexdev/pallet-shop/internal/pkg/metrics"
	"github.com/jcmexdev/pallet-shop/internal/pkg/telemetry"
	"github.com/jcmexdev/pallet-shop/internal/receipt"
	"github.com/jcmexdev/pallet-shop/internal/storefront/infra/httpx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	if cfg.OrderEndpointURL == "" {
		slog.Error("ORDER_ENDPOINT_URL is required")
		os.Exit(1)
	}

	slots, closeSlots, err := kv.Open(cfg.SlotOptions())
	if err != nil {
		slog.Error("failed to open cart storage", "backend", cfg.CartBackend, "error", err)
		os.Exit(1)
	}
	defer func() { _ = closeSlots() }()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	shopMetrics := metrics.NewShopMetrics(reg)

	opts := []checkout.Option{
		checkout.WithMetrics(shopMetrics),
		checkout.WithTimeout(cfg.SubmitTimeout),
	}
	if !cfg.SubmitGuard {
		opts = append(opts, checkout.WithGuard(nil))
	}
	var handlerOpts []httpx.HandlerOption
	if cfg.CheckoutLogPath != "" {
		repo, err := checkoutsqlite.Open(cfg.CheckoutLogPath)
		if err != nil {
			slog.Error("failed to open checkout log", "path", cfg.CheckoutLogPath, "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		opts = append(opts, checkout.WithLog(repo))
		handlerOpts = append(handlerOpts, httpx.WithCheckoutHistory(repo))
	}

	pipeline := checkout.NewPipeline(
		transport.NewHTTPTransport(cfg.OrderEndpointURL, nil),
		receipt.NewGenerator(nil),
		opts...,
	)

	handler := httpx.NewHandler(slots, cat, pipeline, shopMetrics, handlerOpts...)
	router := httpx.NewRouter(handler, metrics.NewServerMetrics(reg, "storefront"), metrics.Handler(reg))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("storefront listening", "addr", cfg.HTTPAddr, "cart_backend", cfg.CartBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
