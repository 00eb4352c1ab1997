package dto

import (
	"time"

	"github.com/google/uuid"
)

type JoinRequestResponse struct {
	ID         uuid.UUID        `json:"id"`
	CalendarID uuid.UUID        `json:"calendar_id"`
	UserID     uuid.UUID        `json:"user_id"`
	Status     string           `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	Profile    *ProfileResponse `json:"profile,omitempty"`
}

type ApproveJoinRequest struct {
	Role string `json:"role"`
}
