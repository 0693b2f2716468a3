package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records one count and one latency observation per
// completed request, keyed by (method, endpoint[, status_code]).
type HTTPMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

// NewHTTPMetrics creates the request counter and latency histogram for a
// service. prefix is the metric name prefix, e.g. "order_service".
func NewHTTPMetrics(prefix string) (*HTTPMetrics, error) {
	meter := otel.Meter(prefix)

	requests, err := meter.Int64Counter(
		prefix+"_requests",
		metric.WithDescription("Total requests"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram(
		prefix+"_request_duration_seconds",
		metric.WithDescription("Request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{requests: requests, latency: latency}, nil
}

func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		elapsed := time.Since(start).Seconds()
		method := attribute.String("method", r.Method)
		endpoint := attribute.String("endpoint", r.URL.Path)

		m.requests.Add(r.Context(), 1, metric.WithAttributes(
			method, endpoint,
			attribute.String("status_code", strconv.Itoa(sw.status)),
		))
		m.latency.Record(r.Context(), elapsed, metric.WithAttributes(method, endpoint))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
