package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCalendarRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}

type UpdateCalendarRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type CalendarResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedBy   uuid.UUID `json:"created_by"`
	Role        string    `json:"role,omitempty"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MemberResponse struct {
	ID         uuid.UUID        `json:"id"`
	CalendarID uuid.UUID        `json:"calendar_id"`
	UserID     uuid.UUID        `json:"user_id"`
	Role       string           `json:"role"`
	JoinedAt   time.Time        `json:"joined_at"`
	Profile    *ProfileResponse `json:"profile,omitempty"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

type ColorsResponse struct {
	Colors []string `json:"colors"`
}
