package models

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription is an attendee's opt-in to push notifications for one event.
// Endpoint is the delivery URL issued by the attendee's push provider.
type PushSubscription struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Endpoint  string    `json:"endpoint"`
	Auth      string    `json:"auth"`
	P256DH    string    `json:"p256dh"`
	CreatedAt time.Time `json:"created_at"`
}
