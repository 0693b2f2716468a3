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
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/lalaavipsha/microservices-platform/internal/correlation"
	"github.com/lalaavipsha/microservices-platform/internal/gateway"
	"github.com/lalaavipsha/microservices-platform/internal/health"
	"github.com/lalaavipsha/microservices-platform/internal/registry"
	"github.com/lalaavipsha/microservices-platform/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "api-gateway", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("api-gateway", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := otelruntime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	reg := registry.New(map[string]string{
		"auth":         envOr("AUTH_SERVICE_URL", "http://auth-service"),
		"order":        envOr("ORDER_SERVICE_URL", "http://order-service"),
		"payment":      envOr("PAYMENT_SERVICE_URL", "http://payment-service"),
		"notification": envOr("NOTIFICATION_SERVICE_URL", "http://notification-service"),
	})

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	dispatcher, err := gateway.NewDispatcher(reg, httpClient, logger)
	if err != nil {
		logger.Error("failed to create dispatcher", "error", err)
		os.Exit(1)
	}
	handler := gateway.NewHandler(dispatcher, logger)

	httpMetrics, err := telemetry.NewHTTPMetrics("api_gateway")
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", handler.HandleIndex)
	mux.HandleFunc("GET /health", health.Health("api-gateway"))
	mux.HandleFunc("GET /ready", health.Ready)
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("POST /api/v1/auth/register", telemetry.WithHTTPRoute(handler.HandleAuth))
	mux.HandleFunc("POST /api/v1/auth/login", telemetry.WithHTTPRoute(handler.HandleAuth))
	mux.HandleFunc("GET /api/v1/auth/validate", telemetry.WithHTTPRoute(handler.HandleAuth))
	mux.HandleFunc("GET /api/v1/orders", telemetry.WithHTTPRoute(handler.HandleOrders))
	mux.HandleFunc("POST /api/v1/orders", telemetry.WithHTTPRoute(handler.HandleOrders))
	mux.HandleFunc("GET /api/v1/orders/{id}", telemetry.WithHTTPRoute(handler.HandleOrders))
	mux.HandleFunc("POST /api/v1/payments", telemetry.WithHTTPRoute(handler.HandlePayments))
	mux.HandleFunc("GET /api/v1/payments/{id}", telemetry.WithHTTPRoute(handler.HandlePayments))
	mux.HandleFunc("POST /api/v1/notifications", telemetry.WithHTTPRoute(handler.HandleNotifications))

	port := envOr("PORT", "8080")

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(
			correlation.Middleware(httpMetrics.Middleware(mux)), "api-gateway",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting api gateway", "port", port)
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
