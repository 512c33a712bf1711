package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jcmexdev/pallet-shop/internal/orderdesk"
	"github.com/jcmexdev/pallet-shop/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger(slog.LevelInfo)

	addr := getEnv("ORDER_DESK_ADDR", ":9090")
	srv := &http.Server{
		Addr:              addr,
		Handler:           orderdesk.New().Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("order desk listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
