package payments

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lalaavipsha/microservices-platform/internal/apierror"
	"github.com/lalaavipsha/microservices-platform/internal/domain"
	"github.com/lalaavipsha/microservices-platform/internal/httpx"
	"github.com/lalaavipsha/microservices-platform/internal/store"
)

type Handler struct {
	payments  *store.Store[domain.Payment]
	processor *Processor
	logger    *slog.Logger
	processed metric.Int64Counter
	amounts   metric.Float64Histogram
}

func NewHandler(payments *store.Store[domain.Payment], processor *Processor, logger *slog.Logger) (*Handler, error) {
	meter := otel.Meter("payment_service")

	processed, err := meter.Int64Counter(
		"payment_service_payments",
		metric.WithDescription("Payments processed"),
	)
	if err != nil {
		return nil, err
	}

	amounts, err := meter.Float64Histogram(
		"payment_service_payment_amount_dollars",
		metric.WithDescription("Payment amount"),
		metric.WithExplicitBucketBoundaries(10, 50, 100, 250, 500, 1000, 5000),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		payments:  payments,
		processor: processor,
		logger:    logger,
		processed: processed,
		amounts:   amounts,
	}, nil
}

type createPaymentRequest struct {
	OrderID  string   `json:"order_id"`
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
}

// HandleCreate creates and finalizes a payment in one synchronous
// operation. A declined payment is still recorded; it answers 402 with
// the same payment shape.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil || req.OrderID == "" {
		httpx.WriteError(w, h.logger, apierror.Validation("Amount and order_id required"))
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	duration, status := h.processor.Process()

	payment := domain.Payment{
		ID:             uuid.New().String(),
		OrderID:        req.OrderID,
		Amount:         *req.Amount,
		Currency:       currency,
		Status:         status,
		ProcessingTime: duration.Seconds(),
		CreatedAt:      time.Now().UTC(),
	}
	h.payments.Put(payment.ID, payment)

	h.processed.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("status", string(status)),
		attribute.String("currency", currency),
	))
	h.amounts.Record(r.Context(), payment.Amount)

	h.logger.Info("payment processed",
		"payment_id", payment.ID,
		"order_id", payment.OrderID,
		"amount", payment.Amount,
		"status", payment.Status,
	)

	statusCode := http.StatusCreated
	if status == domain.PaymentStatusFailed {
		statusCode = http.StatusPaymentRequired
	}
	httpx.WriteJSON(w, h.logger, statusCode, map[string]any{
		"message": "Payment " + string(status),
		"payment": payment,
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	payment, ok := h.payments.Get(id)
	if !ok {
		httpx.WriteError(w, h.logger, apierror.NotFound("Payment not found"))
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, payment)
}
