package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lalaavipsha/microservices-platform/internal/domain"
	"github.com/lalaavipsha/microservices-platform/internal/store"
)

type stubPaymentsClient struct {
	result     *PaymentResult
	err        error
	calls      int
	lastAmount float64
}

func (c *stubPaymentsClient) Create(_ context.Context, _ string, amount float64, _ string) (*PaymentResult, error) {
	c.calls++
	c.lastAmount = amount
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

type createResponse struct {
	Message string       `json:"message"`
	Order   domain.Order `json:"order"`
}

func newTestOrdersHandler(t *testing.T, client PaymentsClient) (*Handler, *store.Store[domain.Order]) {
	t.Helper()
	orderStore := store.New[domain.Order]()
	h, err := NewHandler(orderStore, client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	return h, orderStore
}

func createOrder(t *testing.T, h *Handler, body string) (*httptest.ResponseRecorder, createResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.HandleCreate(rec, req)

	var resp createResponse
	if rec.Code == http.StatusCreated {
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec, resp
}

func TestHandler_HandleCreate_Totals(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		total float64
	}{
		{"price times quantity", `{"items":[{"price":100,"quantity":2}]}`, 200},
		{"sums across items", `{"items":[{"price":100,"quantity":2},{"price":25.5,"quantity":4}]}`, 302},
		{"missing quantity defaults to 1", `{"items":[{"price":100}]}`, 100},
		{"missing price defaults to 0", `{"items":[{"quantity":3}]}`, 0},
		{"explicit zero quantity stays 0", `{"items":[{"price":100,"quantity":0}]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubPaymentsClient{err: errors.New("payments down")}
			h, _ := newTestOrdersHandler(t, client)

			rec, resp := createOrder(t, h, tt.body)

			if rec.Code != http.StatusCreated {
				t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
			}
			if resp.Order.Total != tt.total {
				t.Errorf("expected total %v, got %v", tt.total, resp.Order.Total)
			}
		})
	}
}

func TestHandler_HandleCreate_Validation(t *testing.T) {
	h, orderStore := newTestOrdersHandler(t, &stubPaymentsClient{})

	for _, body := range []string{`{}`, `{"items":[]}`, `not json`} {
		rec, _ := createOrder(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected status 400, got %d", body, rec.Code)
		}
	}
	if orderStore.Len() != 0 {
		t.Errorf("expected no orders stored, got %d", orderStore.Len())
	}
}

func TestHandler_HandleCreate_PaymentSucceeds(t *testing.T) {
	client := &stubPaymentsClient{
		result: &PaymentResult{PaymentID: "pay-1", Status: domain.PaymentStatusCompleted},
	}
	h, orderStore := newTestOrdersHandler(t, client)

	rec, resp := createOrder(t, h, `{"items":[{"price":100,"quantity":2}]}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if resp.Order.Status != domain.OrderStatusPaymentInitiated {
		t.Errorf("expected status payment_initiated, got %s", resp.Order.Status)
	}
	if resp.Order.PaymentID != "pay-1" {
		t.Errorf("expected payment_id pay-1, got %q", resp.Order.PaymentID)
	}
	if client.lastAmount != 200 {
		t.Errorf("expected payment amount 200, got %v", client.lastAmount)
	}

	stored, ok := orderStore.Get(resp.Order.ID)
	if !ok {
		t.Fatal("expected order to be stored")
	}
	if stored.Status != domain.OrderStatusPaymentInitiated {
		t.Errorf("expected stored status payment_initiated, got %s", stored.Status)
	}
}

func TestHandler_HandleCreate_PaymentTransportFailure(t *testing.T) {
	client := &stubPaymentsClient{err: errors.New("connection refused")}
	h, orderStore := newTestOrdersHandler(t, client)

	rec, resp := createOrder(t, h, `{"items":[{"price":100,"quantity":2}]}`)

	// Order creation success is decoupled from the payment outcome.
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if resp.Order.Status != domain.OrderStatusPending {
		t.Errorf("expected status pending, got %s", resp.Order.Status)
	}
	if resp.Order.PaymentID != "" {
		t.Errorf("expected no payment_id, got %q", resp.Order.PaymentID)
	}

	stored, ok := orderStore.Get(resp.Order.ID)
	if !ok {
		t.Fatal("expected order to be stored despite payment failure")
	}
	if stored.Status != domain.OrderStatusPending {
		t.Errorf("expected stored status pending, got %s", stored.Status)
	}
	if client.calls != 1 {
		t.Errorf("expected a single payment attempt, got %d", client.calls)
	}
}

func TestHandler_HandleCreate_PaymentDeclined(t *testing.T) {
	client := &stubPaymentsClient{
		result: &PaymentResult{PaymentID: "pay-2", Status: domain.PaymentStatusFailed},
	}
	h, _ := newTestOrdersHandler(t, client)

	rec, resp := createOrder(t, h, `{"items":[{"price":50,"quantity":1}]}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if resp.Order.Status != domain.OrderStatusPending {
		t.Errorf("expected status pending, got %s", resp.Order.Status)
	}
	if resp.Order.PaymentID != "" {
		t.Errorf("expected no payment_id for declined payment, got %q", resp.Order.PaymentID)
	}
}

func TestHandler_HandleGet(t *testing.T) {
	h, orderStore := newTestOrdersHandler(t, &stubPaymentsClient{})
	orderStore.Put("o-1", domain.Order{ID: "o-1", Status: domain.OrderStatusPending})

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/o-1", nil)
		req.SetPathValue("id", "o-1")
		rec := httptest.NewRecorder()

		h.HandleGet(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/missing", nil)
		req.SetPathValue("id", "missing")
		rec := httptest.NewRecorder()

		h.HandleGet(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleList(t *testing.T) {
	h, orderStore := newTestOrdersHandler(t, &stubPaymentsClient{})
	orderStore.Put("o-1", domain.Order{ID: "o-1"})
	orderStore.Put("o-2", domain.Order{ID: "o-2"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()

	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Orders []domain.Order `json:"orders"`
		Total  int            `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Orders) != 2 {
		t.Errorf("expected 2 orders, got total=%d len=%d", resp.Total, len(resp.Orders))
	}
}
