package notifications

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

const deliveryDelay = 50 * time.Millisecond

// Handler records notifications. Delivery is simulated by a fixed delay;
// once recorded a notification is always sent.
type Handler struct {
	notifications *store.Store[domain.Notification]
	sleep         func(time.Duration)
	logger        *slog.Logger
	sent          metric.Int64Counter
}

func NewHandler(notifications *store.Store[domain.Notification], sleep func(time.Duration), logger *slog.Logger) (*Handler, error) {
	if sleep == nil {
		sleep = time.Sleep
	}

	meter := otel.Meter("notification_service")
	sent, err := meter.Int64Counter(
		"notification_service_notifications",
		metric.WithDescription("Notifications sent"),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		notifications: notifications,
		sleep:         sleep,
		logger:        logger,
		sent:          sent,
	}, nil
}

type sendRequest struct {
	Type      string `json:"type"`
	Recipient string `json:"recipient"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" || req.Recipient == "" {
		httpx.WriteError(w, h.logger, apierror.Validation("Type and recipient required"))
		return
	}

	h.sleep(deliveryDelay)

	notification := domain.Notification{
		ID:        uuid.New().String(),
		Type:      req.Type,
		Recipient: req.Recipient,
		Status:    domain.NotificationStatusSent,
		CreatedAt: time.Now().UTC(),
	}
	h.notifications.Put(notification.ID, notification)

	h.sent.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("type", notification.Type),
		attribute.String("status", string(notification.Status)),
	))
	h.logger.Info("notification sent", "notification_id", notification.ID, "type", notification.Type)

	httpx.WriteJSON(w, h.logger, http.StatusCreated, map[string]any{
		"message":      "Notification sent",
		"notification": notification,
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	notification, ok := h.notifications.Get(id)
	if !ok {
		httpx.WriteError(w, h.logger, apierror.NotFound("Notification not found"))
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, notification)
}
