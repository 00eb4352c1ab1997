package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JoinStatusPending  = "pending"
	JoinStatusApproved = "approved"
	JoinStatusDeclined = "declined"
)

type JoinRequest struct {
	ID         uuid.UUID  `json:"id"`
	CalendarID uuid.UUID  `json:"calendar_id"`
	UserID     uuid.UUID  `json:"user_id"`
	Status     string     `json:"status"`
	Role       *string    `json:"role,omitempty"`
	DecidedBy  *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	Profile    *Profile   `json:"profile,omitempty"`
}
