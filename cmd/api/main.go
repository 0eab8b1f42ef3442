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

	"github.com/Khoi123345/bookstore-platform/internal/cart"
	"github.com/Khoi123345/bookstore-platform/internal/coupon"
	"github.com/Khoi123345/bookstore-platform/internal/httpx"
	"github.com/Khoi123345/bookstore-platform/internal/inventory"
	"github.com/Khoi123345/bookstore-platform/internal/order"
	"github.com/Khoi123345/bookstore-platform/internal/pkg/cache"
	"github.com/Khoi123345/bookstore-platform/internal/pkg/telemetry"
	"github.com/Khoi123345/bookstore-platform/internal/store/sqlite"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "bookstore-platform"))
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("tracer shutdown error", "error", err)
			}
		}()
	}

	store, err := sqlite.Open(getEnv("DB_PATH", "./data/bookstore.db"))
	if err != nil {
		slog.Error("could not open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Checkout idempotency is optional: without redis a retried POST /orders
	// simply creates a second order, as the original system did.
	var idem cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		idem = cache.NewRedisCache(addr, "bookstore-platform")
	}

	stockLedger := inventory.NewLedger(store.Books)
	couponLedger := coupon.NewLedger(store.Coupons)
	couponValidator := coupon.NewValidator(store.Coupons)
	cartService := cart.NewService(store.Carts, store.Books)
	orderService := order.NewService(
		store.Orders, store.Books, stockLedger, couponLedger, couponValidator,
		cartService, store.Events, idem,
	)

	router := httpx.NewRouter(
		httpx.NewOrderHandler(orderService),
		httpx.NewCartHandler(cartService),
		httpx.NewCouponHandler(couponValidator),
	)

	server := &http.Server{
		Addr:    getEnv("HTTP_ADDR", ":8080"),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("bookstore API running", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
