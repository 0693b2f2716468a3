package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type Handler struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewHandler(dispatcher *Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleAuth rewrites /api/v1/auth/* onto the identity service's
// /api/v1/* routes.
func (h *Handler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	path := strings.Replace(r.URL.Path, "/api/v1/auth/", "/api/v1/", 1)
	h.dispatcher.Forward(w, r, "auth", path)
}

func (h *Handler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	h.dispatcher.Forward(w, r, "order", r.URL.Path)
}

func (h *Handler) HandlePayments(w http.ResponseWriter, r *http.Request) {
	h.dispatcher.Forward(w, r, "payment", r.URL.Path)
}

func (h *Handler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	h.dispatcher.Forward(w, r, "notification", r.URL.Path)
}

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"service": "api-gateway",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":        "/health",
			"ready":         "/ready",
			"metrics":       "/metrics",
			"auth":          "/api/v1/auth/*",
			"orders":        "/api/v1/orders/*",
			"payments":      "/api/v1/payments/*",
			"notifications": "/api/v1/notifications/*",
		},
	})
	if err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
