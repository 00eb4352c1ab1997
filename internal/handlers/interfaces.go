package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/oauth"
	"github.com/tripstitch/tripstitch-api/internal/planner"
	"github.com/tripstitch/tripstitch-api/internal/services"
	"github.com/tripstitch/tripstitch-api/internal/sse"
)

// ProfileServiceInterface defines the methods used by handlers from ProfileService
type ProfileServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, fullName, avatarURL *string) (*models.Profile, error)
}

// AccountServiceInterface defines the methods used by handlers from AccountService
type AccountServiceInterface interface {
	SignUp(ctx context.Context, email, password, fullName string) (*models.Profile, error)
	SignIn(ctx context.Context, email, password string) (*models.Profile, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// CalendarServiceInterface defines the methods used by handlers from CalendarService
type CalendarServiceInterface interface {
	Create(ctx context.Context, name string, description *string, color string, ownerID uuid.UUID) (*models.Calendar, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Calendar, error)
	GetByID(ctx context.Context, calendarID uuid.UUID) (*models.Calendar, error)
	Update(ctx context.Context, calendarID uuid.UUID, name, description, color *string) (*models.Calendar, error)
	Delete(ctx context.Context, calendarID uuid.UUID) error
	RoleOf(ctx context.Context, calendarID, userID uuid.UUID) (string, error)
	GetMembers(ctx context.Context, calendarID uuid.UUID) ([]models.CalendarMember, error)
	RemoveMember(ctx context.Context, calendarID, actorID, memberID uuid.UUID) error
	Leave(ctx context.Context, calendarID, userID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, calendarID, actorID, memberID uuid.UUID, role string) (*models.CalendarMember, error)
}

// EventServiceInterface defines the methods used by handlers from EventService
type EventServiceInterface interface {
	ListByCalendar(ctx context.Context, calendarID uuid.UUID) ([]models.Event, error)
	ListInRange(ctx context.Context, calendarID uuid.UUID, from, to planner.Date) ([]models.Event, error)
	GetByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error)
	Create(ctx context.Context, calendarID, userID uuid.UUID, in services.EventInput) (*models.Event, error)
	Update(ctx context.Context, eventID uuid.UUID, in services.EventInput) (*models.Event, error)
	Delete(ctx context.Context, eventID uuid.UUID) error
}

// InvitationServiceInterface defines the methods used by handlers from InvitationService
type InvitationServiceInterface interface {
	ResolveToken(ctx context.Context, token string) (*services.Resolution, error)
	Create(ctx context.Context, calendarID uuid.UUID, email, role string, invitedBy uuid.UUID) (*services.InviteOutcome, error)
	Accept(ctx context.Context, token string, userID uuid.UUID) (*models.CalendarMember, error)
	Reject(ctx context.Context, token string) error
	ListForCalendar(ctx context.Context, calendarID uuid.UUID) ([]models.Invitation, error)
	ListForEmail(ctx context.Context, email string) ([]models.Invitation, error)
	Cancel(ctx context.Context, invitationID, calendarID uuid.UUID) error
}

// JoinServiceInterface defines the methods used by handlers from JoinService
type JoinServiceInterface interface {
	Summary(ctx context.Context, calendarID uuid.UUID) (*services.CalendarSummary, error)
	Request(ctx context.Context, calendarID, userID uuid.UUID) (*models.JoinRequest, error)
	ListPending(ctx context.Context, calendarID uuid.UUID) ([]models.JoinRequest, error)
	Approve(ctx context.Context, calendarID, requestID, deciderID uuid.UUID, role string) (*models.CalendarMember, error)
	Decline(ctx context.Context, calendarID, requestID, deciderID uuid.UUID) error
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	SendCalendarInvite(to, calendarName, inviterName, link string) error
	SendAddedToCalendar(to, calendarName, inviterName, link string) error
}

// HubInterface defines the methods used by handlers from the Hub
type HubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	SubscribeToCalendar(clientID string, userID, calendarID uuid.UUID) bool
	UnsubscribeFromCalendar(clientID string, calendarID uuid.UUID)
	BroadcastCalendarChange(calendarID uuid.UUID, kind string, entityID, actorID uuid.UUID)
	RevokeAccess(calendarID, userID uuid.UUID)
}
