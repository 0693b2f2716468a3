package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lalaavipsha/microservices-platform/internal/correlation"
	"github.com/lalaavipsha/microservices-platform/internal/domain"
)

// PaymentResult is the slice of the payment service's response the saga
// cares about.
type PaymentResult struct {
	PaymentID string
	Status    domain.PaymentStatus
}

// PaymentsClient initiates a payment for an order. Implementations must
// distinguish a declined payment (a result with status failed) from a
// transport failure (an error).
type PaymentsClient interface {
	Create(ctx context.Context, orderID string, amount float64, currency string) (*PaymentResult, error)
}

// HTTPPaymentsClient calls the payment service over HTTP. The injected
// client's timeout bounds the call; the saga has no budget beyond it.
type HTTPPaymentsClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPPaymentsClient(baseURL string, client *http.Client) *HTTPPaymentsClient {
	return &HTTPPaymentsClient{baseURL: baseURL, client: client}
}

type createPaymentRequest struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type createPaymentResponse struct {
	Payment domain.Payment `json:"payment"`
}

func (c *HTTPPaymentsClient) Create(ctx context.Context, orderID string, amount float64, currency string) (*PaymentResult, error) {
	data, err := json.Marshal(createPaymentRequest{
		OrderID:  orderID,
		Amount:   amount,
		Currency: currency,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/payments", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	correlation.SetOutbound(ctx, req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call payment service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusPaymentRequired {
		return nil, fmt.Errorf("payment service returned status %d", resp.StatusCode)
	}

	var body createPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}

	return &PaymentResult{
		PaymentID: body.Payment.ID,
		Status:    body.Payment.Status,
	}, nil
}
