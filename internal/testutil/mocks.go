package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/oauth"
	"github.com/tripstitch/tripstitch-api/internal/planner"
	"github.com/tripstitch/tripstitch-api/internal/services"
	"github.com/tripstitch/tripstitch-api/internal/sse"
)

// MockProfileService mocks the ProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.Profile, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, id uuid.UUID, fullName, avatarURL *string) (*models.Profile, error) {
	args := m.Called(ctx, id, fullName, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

// MockAccountService mocks the AccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) SignUp(ctx context.Context, email, password, fullName string) (*models.Profile, error) {
	args := m.Called(ctx, email, password, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockAccountService) SignIn(ctx context.Context, email, password string) (*models.Profile, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error) {
	args := m.Called(userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockJWTService) RefreshExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockCalendarService mocks the CalendarService
type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) Create(ctx context.Context, name string, description *string, color string, ownerID uuid.UUID) (*models.Calendar, error) {
	args := m.Called(ctx, name, description, color, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Calendar), args.Error(1)
}

func (m *MockCalendarService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Calendar, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Calendar), args.Error(1)
}

func (m *MockCalendarService) GetByID(ctx context.Context, calendarID uuid.UUID) (*models.Calendar, error) {
	args := m.Called(ctx, calendarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Calendar), args.Error(1)
}

func (m *MockCalendarService) Update(ctx context.Context, calendarID uuid.UUID, name, description, color *string) (*models.Calendar, error) {
	args := m.Called(ctx, calendarID, name, description, color)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Calendar), args.Error(1)
}

func (m *MockCalendarService) Delete(ctx context.Context, calendarID uuid.UUID) error {
	args := m.Called(ctx, calendarID)
	return args.Error(0)
}

func (m *MockCalendarService) RoleOf(ctx context.Context, calendarID, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, calendarID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockCalendarService) GetMembers(ctx context.Context, calendarID uuid.UUID) ([]models.CalendarMember, error) {
	args := m.Called(ctx, calendarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CalendarMember), args.Error(1)
}

func (m *MockCalendarService) RemoveMember(ctx context.Context, calendarID, actorID, memberID uuid.UUID) error {
	args := m.Called(ctx, calendarID, actorID, memberID)
	return args.Error(0)
}

func (m *MockCalendarService) Leave(ctx context.Context, calendarID, userID uuid.UUID) error {
	args := m.Called(ctx, calendarID, userID)
	return args.Error(0)
}

func (m *MockCalendarService) UpdateMemberRole(ctx context.Context, calendarID, actorID, memberID uuid.UUID, role string) (*models.CalendarMember, error) {
	args := m.Called(ctx, calendarID, actorID, memberID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarMember), args.Error(1)
}

// MockEventService mocks the EventService
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) ListByCalendar(ctx context.Context, calendarID uuid.UUID) ([]models.Event, error) {
	args := m.Called(ctx, calendarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventService) ListInRange(ctx context.Context, calendarID uuid.UUID, from, to planner.Date) ([]models.Event, error) {
	args := m.Called(ctx, calendarID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventService) GetByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) Create(ctx context.Context, calendarID, userID uuid.UUID, in services.EventInput) (*models.Event, error) {
	args := m.Called(ctx, calendarID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) Update(ctx context.Context, eventID uuid.UUID, in services.EventInput) (*models.Event, error) {
	args := m.Called(ctx, eventID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) Delete(ctx context.Context, eventID uuid.UUID) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockInvitationService mocks the InvitationService
type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) ResolveToken(ctx context.Context, token string) (*services.Resolution, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Resolution), args.Error(1)
}

func (m *MockInvitationService) Create(ctx context.Context, calendarID uuid.UUID, email, role string, invitedBy uuid.UUID) (*services.InviteOutcome, error) {
	args := m.Called(ctx, calendarID, email, role, invitedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.InviteOutcome), args.Error(1)
}

func (m *MockInvitationService) Accept(ctx context.Context, token string, userID uuid.UUID) (*models.CalendarMember, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarMember), args.Error(1)
}

func (m *MockInvitationService) Reject(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockInvitationService) ListForCalendar(ctx context.Context, calendarID uuid.UUID) ([]models.Invitation, error) {
	args := m.Called(ctx, calendarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invitation), args.Error(1)
}

func (m *MockInvitationService) ListForEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invitation), args.Error(1)
}

func (m *MockInvitationService) Cancel(ctx context.Context, invitationID, calendarID uuid.UUID) error {
	args := m.Called(ctx, invitationID, calendarID)
	return args.Error(0)
}

// MockJoinService mocks the JoinService
type MockJoinService struct {
	mock.Mock
}

func (m *MockJoinService) Summary(ctx context.Context, calendarID uuid.UUID) (*services.CalendarSummary, error) {
	args := m.Called(ctx, calendarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CalendarSummary), args.Error(1)
}

func (m *MockJoinService) Request(ctx context.Context, calendarID, userID uuid.UUID) (*models.JoinRequest, error) {
	args := m.Called(ctx, calendarID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

func (m *MockJoinService) ListPending(ctx context.Context, calendarID uuid.UUID) ([]models.JoinRequest, error) {
	args := m.Called(ctx, calendarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.JoinRequest), args.Error(1)
}

func (m *MockJoinService) Approve(ctx context.Context, calendarID, requestID, deciderID uuid.UUID, role string) (*models.CalendarMember, error) {
	args := m.Called(ctx, calendarID, requestID, deciderID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarMember), args.Error(1)
}

func (m *MockJoinService) Decline(ctx context.Context, calendarID, requestID, deciderID uuid.UUID) error {
	args := m.Called(ctx, calendarID, requestID, deciderID)
	return args.Error(0)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendCalendarInvite(to, calendarName, inviterName, link string) error {
	args := m.Called(to, calendarName, inviterName, link)
	return args.Error(0)
}

func (m *MockEmailService) SendAddedToCalendar(to, calendarName, inviterName, link string) error {
	args := m.Called(to, calendarName, inviterName, link)
	return args.Error(0)
}

// MockHub mocks the change notification hub
type MockHub struct {
	mock.Mock
}

func (m *MockHub) Register(client *sse.Client) {
	m.Called(client)
}

func (m *MockHub) Unregister(client *sse.Client) {
	m.Called(client)
}

func (m *MockHub) SubscribeToCalendar(clientID string, userID, calendarID uuid.UUID) bool {
	args := m.Called(clientID, userID, calendarID)
	return args.Bool(0)
}

func (m *MockHub) UnsubscribeFromCalendar(clientID string, calendarID uuid.UUID) {
	m.Called(clientID, calendarID)
}

func (m *MockHub) BroadcastCalendarChange(calendarID uuid.UUID, kind string, entityID, actorID uuid.UUID) {
	m.Called(calendarID, kind, entityID, actorID)
}

func (m *MockHub) RevokeAccess(calendarID, userID uuid.UUID) {
	m.Called(calendarID, userID)
}

// MockOAuthProvider mocks an OAuth provider
type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) GetConsentURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*oauth.UserInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.UserInfo), args.Error(1)
}

func (m *MockOAuthProvider) Name() string {
	args := m.Called()
	return args.String(0)
}
