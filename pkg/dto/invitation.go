package dto

import (
	"time"

	"github.com/google/uuid"
)

const (
	InviteKindInvitation = "invitation"
	InviteKindMember     = "member"
)

type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type InvitationCalendar struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

type InvitationResponse struct {
	ID         uuid.UUID           `json:"id"`
	CalendarID uuid.UUID           `json:"calendar_id"`
	Email      string              `json:"email"`
	Role       string              `json:"role"`
	Token      string              `json:"token,omitempty"`
	Link       string              `json:"link,omitempty"`
	ExpiresAt  time.Time           `json:"expires_at"`
	CreatedAt  time.Time           `json:"created_at"`
	Calendar   *InvitationCalendar `json:"calendar,omitempty"`
	Inviter    *ProfileResponse    `json:"inviter,omitempty"`
}

// InviteResultResponse reports whether an invite produced a token or a membership.
type InviteResultResponse struct {
	Kind       string              `json:"kind"`
	Invitation *InvitationResponse `json:"invitation,omitempty"`
	Member     *MemberResponse     `json:"member,omitempty"`
}

type ResolveInvitationResponse struct {
	State      string              `json:"state"`
	Invitation *InvitationResponse `json:"invitation,omitempty"`
}

type InvitationConflictResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
	Link    string `json:"link,omitempty"`
}
