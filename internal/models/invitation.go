package models

import (
	"time"

	"github.com/google/uuid"
)

type Invitation struct {
	ID         uuid.UUID  `json:"id"`
	CalendarID uuid.UUID  `json:"calendar_id"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	InvitedBy  uuid.UUID  `json:"invited_by"`
	Token      string     `json:"token"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	Calendar   *Calendar  `json:"calendar,omitempty"`
	Inviter    *Profile   `json:"inviter,omitempty"`
}
