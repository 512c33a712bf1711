// Package config reads the storefront settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jcmexdev/pallet-shop/internal/pkg/kv"
)

type Config struct {
	HTTPAddr         string
	OrderEndpointURL string
	SubmitTimeout    time.Duration
	SubmitGuard      bool

	CartBackend    string
	CartDir        string
	RedisAddr      string
	CartSQLitePath string

	// CheckoutLogPath is the SQLite file of the checkout log. Empty disables it.
	CheckoutLogPath string
	ReceiptDir      string
	CatalogPath     string

	LogLevel slog.Level

	ServiceName  string
	OTLPEndpoint string
}

// Load reads every setting, falling back to the defaults for unset variables.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		OrderEndpointURL: getEnv("ORDER_ENDPOINT_URL", ""),
		CartBackend:      strings.ToLower(getEnv("CART_BACKEND", kv.BackendFile)),
		CartDir:          getEnv("CART_DIR", "./data/carts"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		CartSQLitePath:   getEnv("CART_SQLITE_PATH", "./data/cart.db"),
		CheckoutLogPath:  os.Getenv("CHECKOUT_LOG_PATH"),
		ReceiptDir:       getEnv("RECEIPT_DIR", "."),
		CatalogPath:      os.Getenv("CATALOG_PATH"),
		ServiceName:      getEnv("OTEL_SERVICE_NAME", "pallet-shop"),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	if _, set := os.LookupEnv("CHECKOUT_LOG_PATH"); !set {
		cfg.CheckoutLogPath = "./data/checkout.db"
	}

	var err error
	if cfg.SubmitTimeout, err = getDuration("SUBMIT_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	if cfg.SubmitGuard, err = getBool("SUBMIT_GUARD", true); err != nil {
		return Config{}, err
	}
	if cfg.LogLevel, err = getLevel("LOG_LEVEL", slog.LevelInfo); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.CartBackend {
	case kv.BackendMemory, kv.BackendFile, kv.BackendRedis, kv.BackendSQLite:
	default:
		return fmt.Errorf("config: CART_BACKEND %q is not one of memory, file, redis, sqlite", c.CartBackend)
	}
	if c.SubmitTimeout < 0 {
		return fmt.Errorf("config: SUBMIT_TIMEOUT must not be negative")
	}
	return nil
}

// SlotOptions are the kv settings of the cart slot.
func (c Config) SlotOptions() kv.Options {
	return kv.Options{
		Backend:    c.CartBackend,
		Dir:        c.CartDir,
		RedisAddr:  c.RedisAddr,
		Namespace:  "pallet-shop",
		SQLitePath: c.CartSQLitePath,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func getLevel(key string, fallback slog.Level) (slog.Level, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return fallback, fmt.Errorf("config: %s: %w", key, err)
	}
	return lvl, nil
}
