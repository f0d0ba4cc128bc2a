package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Invitation is a single-use token granting co-admin membership on an event.
// Accepted at most once; pending -> accepted/expired/revoked are terminal transitions.
type Invitation struct {
	ID         uuid.UUID        `json:"id"`
	EventID    uuid.UUID        `json:"event_id"`
	Token      string           `json:"token"`
	Status     InvitationStatus `json:"status"`
	Email      *string          `json:"email,omitempty"` // optional intended invitee
	InvitedBy  uuid.UUID        `json:"invited_by"`
	AcceptedBy *uuid.UUID       `json:"accepted_by,omitempty"`
	ExpiresAt  time.Time        `json:"expires_at"`
	AcceptedAt *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Redeemable reports whether the invitation is still pending and unexpired.
func (i *Invitation) Redeemable(now time.Time) bool {
	return i.Status == InvitationPending && now.Before(i.ExpiresAt)
}
