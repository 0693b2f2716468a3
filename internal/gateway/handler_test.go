package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lalaavipsha/microservices-platform/internal/registry"
)

func newTestHandler(t *testing.T, reg *registry.Registry, client *http.Client) *Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := NewDispatcher(reg, client, logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}
	return NewHandler(d, logger)
}

func TestHandler_HandleAuth(t *testing.T) {
	t.Run("rewrites /api/v1/auth prefix onto identity routes", func(t *testing.T) {
		authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/register" {
				t.Errorf("expected /api/v1/register, got %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"user_id":"u-1"}`))
		}))
		defer authServer.Close()

		handler := newTestHandler(t, registry.New(map[string]string{"auth": authServer.URL}), authServer.Client())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
		rec := httptest.NewRecorder()

		handler.HandleAuth(rec, req)

		if rec.Code != http.StatusCreated {
			t.Errorf("expected status 201, got %d", rec.Code)
		}
	})

	t.Run("validate forwards untouched Authorization lookups", func(t *testing.T) {
		authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/validate" {
				t.Errorf("expected /api/v1/validate, got %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"valid":false}`))
		}))
		defer authServer.Close()

		handler := newTestHandler(t, registry.New(map[string]string{"auth": authServer.URL}), authServer.Client())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/validate", nil)
		rec := httptest.NewRecorder()

		handler.HandleAuth(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
		if rec.Body.String() != `{"valid":false}` {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})
}

func TestHandler_HandleOrders(t *testing.T) {
	orderServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/orders/o-1" {
			t.Errorf("expected /api/v1/orders/o-1, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"order_id":"o-1"}`))
	}))
	defer orderServer.Close()

	handler := newTestHandler(t, registry.New(map[string]string{"order": orderServer.URL}), orderServer.Client())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/o-1", nil)
	rec := httptest.NewRecorder()

	handler.HandleOrders(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestHandler_HandleIndex(t *testing.T) {
	handler := newTestHandler(t, registry.New(nil), http.DefaultClient)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.HandleIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected application/json, got %s", rec.Header().Get("Content-Type"))
	}
}
