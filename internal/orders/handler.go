package orders

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

// Handler owns the order store and the order-to-payment saga.
type Handler struct {
	orders      *store.Store[domain.Order]
	payments    PaymentsClient
	logger      *slog.Logger
	created     metric.Int64Counter
	orderValues metric.Float64Histogram
}

func NewHandler(orders *store.Store[domain.Order], payments PaymentsClient, logger *slog.Logger) (*Handler, error) {
	meter := otel.Meter("order_service")

	created, err := meter.Int64Counter(
		"order_service_orders_created",
		metric.WithDescription("Orders created"),
	)
	if err != nil {
		return nil, err
	}

	orderValues, err := meter.Float64Histogram(
		"order_service_order_value_dollars",
		metric.WithDescription("Order value"),
		metric.WithExplicitBucketBoundaries(10, 50, 100, 250, 500, 1000, 5000),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		orders:      orders,
		payments:    payments,
		logger:      logger,
		created:     created,
		orderValues: orderValues,
	}, nil
}

// createOrderItem decodes with pointers so an absent price or quantity
// is distinguishable from an explicit zero: absent price counts as 0,
// absent quantity as 1.
type createOrderItem struct {
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
}

type createOrderRequest struct {
	Items []createOrderItem `json:"items"`
}

// HandleCreate runs the order saga: the order is stored as pending
// before the payment call, so its existence never depends on the payment
// outcome. A failed or unreachable payment leaves the order pending and
// the client still gets a 201 with the order body.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
		httpx.WriteError(w, h.logger, apierror.Validation("Items required"))
		return
	}

	var total float64
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		price := 0.0
		if item.Price != nil {
			price = *item.Price
		}
		quantity := 1
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		total += price * float64(quantity)
		items = append(items, domain.OrderItem{Price: price, Quantity: quantity})
	}

	order := domain.Order{
		ID:        uuid.New().String(),
		Items:     items,
		Total:     total,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	h.orders.Put(order.ID, order)

	h.created.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("status", string(domain.OrderStatusPending)),
	))
	h.orderValues.Record(r.Context(), total)
	h.logger.Info("order created", "order_id", order.ID, "total", order.Total)

	order = h.initiatePayment(r, order)

	httpx.WriteJSON(w, h.logger, http.StatusCreated, map[string]any{
		"message": "Order created successfully",
		"order":   order,
	})
}

// initiatePayment performs the saga's second step and returns the
// order's resulting state. There are no retries and no compensation: a
// single failed attempt leaves the order pending for good.
func (h *Handler) initiatePayment(r *http.Request, order domain.Order) domain.Order {
	result, err := h.payments.Create(r.Context(), order.ID, order.Total, "USD")
	if err != nil {
		h.logger.Warn("payment call failed", "error", err, "order_id", order.ID)
		return order
	}
	if result.Status != domain.PaymentStatusCompleted {
		h.logger.Warn("payment declined", "order_id", order.ID, "payment_id", result.PaymentID)
		return order
	}

	updated, ok := h.orders.Update(order.ID, func(o domain.Order) domain.Order {
		o.Status = domain.OrderStatusPaymentInitiated
		o.PaymentID = result.PaymentID
		return o
	})
	if !ok {
		return order
	}

	h.logger.Info("payment initiated", "order_id", order.ID, "payment_id", result.PaymentID)
	return updated
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders := h.orders.List()
	httpx.WriteJSON(w, h.logger, http.StatusOK, map[string]any{
		"orders": orders,
		"total":  len(orders),
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	order, ok := h.orders.Get(id)
	if !ok {
		httpx.WriteError(w, h.logger, apierror.NotFound("Order not found"))
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, order)
}
