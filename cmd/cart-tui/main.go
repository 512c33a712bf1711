package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jcmexdev/pallet-shop/internal/cart/infra/store"
	"github.com/jcmexdev/pallet-shop/internal/catalog"
	"github.com/jcmexdev/pallet-shop/internal/checkout"
	"github.com/jcmexdev/pallet-shop/internal/checkout/checkoutlog"
	checkoutsqlite "github.com/jcmexdev/pallet-shop/internal/checkout/checkoutlog/sqlite"
	"github.com/jcmexdev/pallet-shop/internal/checkout/transport"
	"github.com/jcmexdev/pallet-shop/internal/pkg/config"
	"github.com/jcmexdev/pallet-shop/internal/pkg/kv"
	"github.com/jcmexdev/pallet-shop/internal/pkg/telemetry"
	"github.com/jcmexdev/pallet-shop/internal/receipt"
	"github.com/jcmexdev/pallet-shop/internal/storefront/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cart-tui:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flag.StringVar(&cfg.OrderEndpointURL, "endpoint", cfg.OrderEndpointURL, "order endpoint URL")
	flag.StringVar(&cfg.CartBackend, "backend", cfg.CartBackend, "cart storage: memory, file, redis or sqlite")
	flag.StringVar(&cfg.CartDir, "cart-dir", cfg.CartDir, "directory of the file backend")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address")
	flag.StringVar(&cfg.CartSQLitePath, "sqlite", cfg.CartSQLitePath, "sqlite file of the cart")
	flag.StringVar(&cfg.ReceiptDir, "receipts", cfg.ReceiptDir, "directory receipts are saved to")
	flag.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "product catalog JSON file")
	flag.BoolVar(&cfg.SubmitGuard, "guard", cfg.SubmitGuard, "reject a second submit while one is in flight")
	flag.DurationVar(&cfg.SubmitTimeout, "timeout", cfg.SubmitTimeout, "order request timeout, 0 for none")
	logPath := flag.String("log", os.Getenv("CART_TUI_LOG"), "log file, empty discards logs")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.OrderEndpointURL == "" {
		return fmt.Errorf("an order endpoint is required (-endpoint or ORDER_ENDPOINT_URL)")
	}

	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(telemetry.NewLogger(logOut, cfg.LogLevel))

	slots, closeSlots, err := kv.Open(cfg.SlotOptions())
	if err != nil {
		return err
	}
	defer func() { _ = closeSlots() }()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	var log checkoutlog.Repository = checkoutlog.NewMemory()
	if cfg.CheckoutLogPath != "" {
		repo, err := checkoutsqlite.Open(cfg.CheckoutLogPath)
		if err != nil {
			return err
		}
		defer repo.Close()
		log = repo
	}

	opts := []checkout.Option{checkout.WithLog(log), checkout.WithTimeout(cfg.SubmitTimeout)}
	if !cfg.SubmitGuard {
		opts = append(opts, checkout.WithGuard(nil))
	}

	model, err := tui.New(context.Background(), tui.Deps{
		Store:    store.New(slots, ""),
		Pipeline: checkout.NewPipeline(transport.NewHTTPTransport(cfg.OrderEndpointURL, nil), receipt.NewGenerator(nil), opts...),
		Receipts: receipt.NewFileSink(cfg.ReceiptDir),
		Catalog:  cat,
	})
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(model).Run()
	return err
}
