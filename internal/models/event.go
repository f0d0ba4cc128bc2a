package models

import (
	"time"

	"github.com/google/uuid"
)

// Event statuses.
const (
	EventDraft     = "draft"
	EventPublished = "published"
	EventArchived  = "archived"
)

// Event is a tenant-scoped event with an owner, a co-admin set, and announcements.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	JoinCode    string     `json:"join_code"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventAdmin links a user as co-admin to an event.
type EventAdmin struct {
	EventID uuid.UUID `json:"event_id"`
	UserID  uuid.UUID `json:"user_id"`
	AddedAt time.Time `json:"added_at"`
}

// EventPreview is the public view of an event resolved from a join code.
// Deliberately excludes tenant-internal fields (owner, admin set).
type EventPreview struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
}

// ToPreview converts an Event to its public preview.
func (e *Event) ToPreview() EventPreview {
	return EventPreview{ID: e.ID, Title: e.Title, StartsAt: e.StartsAt}
}
