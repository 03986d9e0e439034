package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/josh-kwaku/finance-tracker/internal/config"
	"github.com/josh-kwaku/finance-tracker/internal/handler"
	"github.com/josh-kwaku/finance-tracker/internal/logging"
	"github.com/josh-kwaku/finance-tracker/internal/middleware"
	"github.com/josh-kwaku/finance-tracker/internal/service"
	"github.com/josh-kwaku/finance-tracker/internal/service/balance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("finance-tracker", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	accountSvc := service.NewAccountService(b.store, b.accounts, b.users, cfg.OperationTimeout)
	balanceSvc := balance.NewService(b.store, cfg.OperationTimeout)
	transactionSvc := service.NewTransactionService(b.transactions)

	accountHandler := handler.NewAccountHandler(accountSvc)
	moneyHandler := handler.NewMoneyHandler(balanceSvc)
	transactionHandler := handler.NewTransactionHandler(transactionSvc)
	healthHandler := handler.NewHealthHandler(b.pinger, cfg.StorageBackend)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	authenticated := middleware.Auth(cfg.JWTSecret)
	idempotent := middleware.Idempotency(b.idempotency)

	read := func(h http.HandlerFunc) http.Handler {
		return authenticated(h)
	}
	mutate := func(h http.HandlerFunc) http.Handler {
		return authenticated(limiter.Middleware(idempotent(h)))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /docs", handler.ServeDocs())
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(handler.OpenAPISpec))

	mux.Handle("POST /api/v1/accounts", mutate(accountHandler.Create))
	mux.Handle("GET /api/v1/accounts", read(accountHandler.List))
	mux.Handle("GET /api/v1/accounts/{id}", read(accountHandler.Get))
	mux.Handle("POST /api/v1/accounts/{id}/deposits", mutate(moneyHandler.Deposit))
	mux.Handle("POST /api/v1/accounts/{id}/transactions", mutate(moneyHandler.Debit))
	mux.Handle("POST /api/v1/transfers", mutate(moneyHandler.Transfer))
	mux.Handle("GET /api/v1/transactions", read(transactionHandler.List))

	var h http.Handler = mux
	h = middleware.Metrics(h)
	h = middleware.Recovery(h)
	h = middleware.Logging(h)
	h = middleware.Tracing(h)

	cleaner := service.NewIdempotencyCleaner(b.idempotency, logger, cfg.IdempotencyCleanupInterval)
	go cleaner.Start(ctx)
	go limiter.StartPruning(ctx, time.Minute, 10*time.Minute)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr, "backend", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
