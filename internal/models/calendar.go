package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// DefaultCalendarColor is used when a calendar is created without a color.
const DefaultCalendarColor = "#3B82F6"

// CalendarColors is the palette offered when creating a calendar.
var CalendarColors = []string{
	"#3B82F6",
	"#EF4444",
	"#10B981",
	"#8B5CF6",
	"#F59E0B",
	"#EC4899",
	"#06B6D4",
}

type Calendar struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Populated by list queries scoped to a user.
	MemberCount int    `json:"member_count,omitempty"`
	UserRole    string `json:"user_role,omitempty"`
}

type CalendarMember struct {
	ID         uuid.UUID `json:"id"`
	CalendarID uuid.UUID `json:"calendar_id"`
	UserID     uuid.UUID `json:"user_id"`
	Role       string    `json:"role"`
	JoinedAt   time.Time `json:"joined_at"`
	Profile    *Profile  `json:"profile,omitempty"`
}

func IsValidRole(role string) bool {
	return role == RoleOwner || role == RoleEditor || role == RoleViewer
}

// CanWrite reports whether the role may create events.
func CanWrite(role string) bool {
	return role == RoleOwner || role == RoleEditor
}
