package notifications

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lalaavipsha/microservices-platform/internal/domain"
	"github.com/lalaavipsha/microservices-platform/internal/store"
)

func newTestNotificationsHandler(t *testing.T) (*Handler, *store.Store[domain.Notification], *time.Duration) {
	t.Helper()
	var slept time.Duration
	notificationStore := store.New[domain.Notification]()
	h, err := NewHandler(notificationStore, func(d time.Duration) { slept = d }, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	return h, notificationStore, &slept
}

func TestHandler_HandleSend(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		h, _, _ := newTestNotificationsHandler(t)

		for _, body := range []string{`{}`, `{"type":"email"}`, `{"recipient":"alice@example.com"}`} {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(body))
			rec := httptest.NewRecorder()

			h.HandleSend(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("body %q: expected status 400, got %d", body, rec.Code)
			}
		}
	})

	t.Run("records a sent notification after the delivery delay", func(t *testing.T) {
		h, notificationStore, slept := newTestNotificationsHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(`{"type":"email","recipient":"alice@example.com"}`))
		rec := httptest.NewRecorder()

		h.HandleSend(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if *slept != deliveryDelay {
			t.Errorf("expected %v delivery delay, got %v", deliveryDelay, *slept)
		}

		var resp struct {
			Notification domain.Notification `json:"notification"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Notification.Status != domain.NotificationStatusSent {
			t.Errorf("expected status sent, got %s", resp.Notification.Status)
		}

		if _, ok := notificationStore.Get(resp.Notification.ID); !ok {
			t.Error("expected notification to be stored")
		}
	})
}

func TestHandler_HandleGet(t *testing.T) {
	h, notificationStore, _ := newTestNotificationsHandler(t)
	notificationStore.Put("n-1", domain.Notification{ID: "n-1", Status: domain.NotificationStatusSent})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/n-1", nil)
	req.SetPathValue("id", "n-1")
	rec := httptest.NewRecorder()

	h.HandleGet(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/notifications/missing", nil)
	req.SetPathValue("id", "missing")
	rec = httptest.NewRecorder()

	h.HandleGet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}
