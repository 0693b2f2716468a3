package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lalaavipsha/microservices-platform/internal/correlation"
	"github.com/lalaavipsha/microservices-platform/internal/domain"
	"github.com/lalaavipsha/microservices-platform/internal/health"
	"github.com/lalaavipsha/microservices-platform/internal/payments"
	"github.com/lalaavipsha/microservices-platform/internal/store"
	"github.com/lalaavipsha/microservices-platform/internal/telemetry"
)

// successRate is the probability that the simulated gateway approves a
// payment.
const successRate = 0.95

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "payment-service", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("payment-service", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	processor := payments.NewProcessor(successRate, rand.New(rand.NewSource(time.Now().UnixNano())), nil)

	paymentStore := store.New[domain.Payment]()
	handler, err := payments.NewHandler(paymentStore, processor, logger)
	if err != nil {
		logger.Error("failed to create handler", "error", err)
		os.Exit(1)
	}

	httpMetrics, err := telemetry.NewHTTPMetrics("payment_service")
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.Health("payment-service"))
	mux.HandleFunc("GET /ready", health.Ready)
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("POST /api/v1/payments", telemetry.WithHTTPRoute(handler.HandleCreate))
	mux.HandleFunc("GET /api/v1/payments/{id}", telemetry.WithHTTPRoute(handler.HandleGet))

	port := envOr("PORT", "8083")

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      otelhttp.NewHandler(correlation.Middleware(httpMetrics.Middleware(mux)), "payment-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting payment service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
