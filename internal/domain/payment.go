package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is terminal at creation: the processor records it as either
// completed or failed, never in flight.
type Payment struct {
	ID             string        `json:"payment_id"`
	OrderID        string        `json:"order_id"`
	Amount         float64       `json:"amount"`
	Currency       string        `json:"currency"`
	Status         PaymentStatus `json:"status"`
	ProcessingTime float64       `json:"processing_time"`
	CreatedAt      time.Time     `json:"created_at"`
}
