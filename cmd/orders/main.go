package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lalaavipsha/microservices-platform/internal/correlation"
	"github.com/lalaavipsha/microservices-platform/internal/domain"
	"github.com/lalaavipsha/microservices-platform/internal/health"
	"github.com/lalaavipsha/microservices-platform/internal/orders"
	"github.com/lalaavipsha/microservices-platform/internal/store"
	"github.com/lalaavipsha/microservices-platform/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "order-service", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("order-service", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	paymentsClient := orders.NewHTTPPaymentsClient(envOr("PAYMENT_SERVICE_URL", "http://payment-service"), httpClient)

	orderStore := store.New[domain.Order]()
	handler, err := orders.NewHandler(orderStore, paymentsClient, logger)
	if err != nil {
		logger.Error("failed to create handler", "error", err)
		os.Exit(1)
	}

	httpMetrics, err := telemetry.NewHTTPMetrics("order_service")
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.Health("order-service"))
	mux.HandleFunc("GET /ready", health.Ready)
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /api/v1/orders", telemetry.WithHTTPRoute(handler.HandleList))
	mux.HandleFunc("POST /api/v1/orders", telemetry.WithHTTPRoute(handler.HandleCreate))
	mux.HandleFunc("GET /api/v1/orders/{id}", telemetry.WithHTTPRoute(handler.HandleGet))

	port := envOr("PORT", "8082")

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      otelhttp.NewHandler(correlation.Middleware(httpMetrics.Middleware(mux)), "order-service"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting order service", "port", port)
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
