package domain

import "time"

type NotificationStatus string

const NotificationStatusSent NotificationStatus = "sent"

type Notification struct {
	ID        string             `json:"notification_id"`
	Type      string             `json:"type"`
	Recipient string             `json:"recipient"`
	Status    NotificationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}
