package models

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is a post on an event's public feed.
// Writes require the author to be the event owner or in its admin set.
type Announcement struct {
	ID            uuid.UUID `json:"id"`
	EventID       uuid.UUID `json:"event_id"`
	AuthorID      uuid.UUID `json:"author_id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	AttachmentKey *string   `json:"attachment_key,omitempty"` // S3 object key when an attachment was uploaded
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
