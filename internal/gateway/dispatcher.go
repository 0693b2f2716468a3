package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lalaavipsha/microservices-platform/internal/apierror"
	"github.com/lalaavipsha/microservices-platform/internal/correlation"
	"github.com/lalaavipsha/microservices-platform/internal/httpx"
	"github.com/lalaavipsha/microservices-platform/internal/registry"
)

// Dispatcher resolves a logical service name and forwards the request to
// it. A single attempt is final: no retries, no circuit breaking. The
// outbound budget is the injected client's timeout.
type Dispatcher struct {
	registry *registry.Registry
	client   *http.Client
	logger   *slog.Logger
	upstream metric.Int64Counter
}

func NewDispatcher(reg *registry.Registry, client *http.Client, logger *slog.Logger) (*Dispatcher, error) {
	meter := otel.Meter("api_gateway")
	upstream, err := meter.Int64Counter(
		"api_gateway_upstream_requests",
		metric.WithDescription("Upstream requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		registry: reg,
		client:   client,
		logger:   logger,
		upstream: upstream,
	}, nil
}

// Forward proxies the request to the named service at path. The upstream
// status and body pass through verbatim; transport failures are
// translated into 504 (timeout), 503 (connection failure) or 500.
func (d *Dispatcher) Forward(w http.ResponseWriter, r *http.Request, service, path string) {
	start := time.Now()

	baseURL, ok := d.registry.Resolve(service)
	if !ok {
		d.logger.Warn("unknown service", "service", service, "path", path)
		d.complete(w, r, start, apierror.NotFound("service "+service+" not found"))
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, baseURL+path, r.Body)
	if err != nil {
		d.recordUpstream(r.Context(), service, "error")
		d.complete(w, r, start, apierror.Internal(err.Error()))
		return
	}
	if contentType := r.Header.Get("Content-Type"); contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	correlation.SetOutbound(r.Context(), req)

	resp, err := d.client.Do(req)
	if err != nil {
		apiErr := classifyTransport(service, err)
		d.recordUpstream(r.Context(), service, outcomeLabel(apiErr.Kind))
		d.logger.Warn("upstream call failed", "service", service, "path", path, "error", err)
		d.complete(w, r, start, apiErr)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	d.recordUpstream(r.Context(), service, "success")

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		d.logger.Error("failed to copy response body", "error", err)
	}

	d.logCompleted(r, resp.StatusCode, start)
}

// complete writes the error response and emits the per-request log line
// for requests that never reached an upstream response.
func (d *Dispatcher) complete(w http.ResponseWriter, r *http.Request, start time.Time, apiErr *apierror.Error) {
	httpx.WriteError(w, d.logger, apiErr)
	d.logCompleted(r, apiErr.Kind.HTTPStatus(), start)
}

func (d *Dispatcher) logCompleted(r *http.Request, status int, start time.Time) {
	d.logger.Info("request completed",
		"request_id", correlation.FromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"latency_ms", float64(time.Since(start).Microseconds())/1000,
	)
}

func (d *Dispatcher) recordUpstream(ctx context.Context, service, outcome string) {
	d.upstream.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("status", outcome),
	))
}

// classifyTransport maps a transport-layer failure onto the error
// taxonomy. Timeouts win over connection errors: a dial that times out
// counts as a timeout.
func classifyTransport(service string, err error) *apierror.Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return apierror.UpstreamTimeout("service " + service + " timeout")
	case errors.Is(err, syscall.ECONNREFUSED), isDialError(err):
		return apierror.UpstreamUnavailable("service " + service + " unavailable")
	default:
		return apierror.Internal(err.Error())
	}
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func outcomeLabel(kind apierror.Kind) string {
	switch kind {
	case apierror.KindUpstreamTimeout:
		return "timeout"
	case apierror.KindUpstreamUnavailable:
		return "connection_error"
	default:
		return "error"
	}
}
