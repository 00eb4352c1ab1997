package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tripstitch/tripstitch-api/internal/database"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/oauth"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateProfile creates a password-less test profile
func (f *Fixtures) CreateProfile(t *testing.T, opts ...ProfileOption) *models.Profile {
	t.Helper()
	f.counter++

	name := fmt.Sprintf("Traveller %d", f.counter)
	providerID := fmt.Sprintf("provider-%d", f.counter)
	profile := &models.Profile{
		Email:      fmt.Sprintf("traveller%d@example.com", f.counter),
		FullName:   &name,
		Provider:   models.ProviderGoogle,
		ProviderID: &providerID,
	}

	for _, opt := range opts {
		opt(profile)
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO profiles (email, full_name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, profile.Email, profile.FullName, profile.AvatarURL, profile.Provider, profile.ProviderID).Scan(
		&profile.ID, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	return profile
}

// ProfileOption configures a test profile
type ProfileOption func(*models.Profile)

func WithEmail(email string) ProfileOption {
	return func(p *models.Profile) {
		p.Email = email
	}
}

func WithFullName(name string) ProfileOption {
	return func(p *models.Profile) {
		p.FullName = &name
	}
}

// CreateCalendar creates a calendar owned by owner, with the owner membership
func (f *Fixtures) CreateCalendar(t *testing.T, owner *models.Profile, name string) *models.Calendar {
	t.Helper()
	ctx := context.Background()

	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cal := &models.Calendar{Name: name, Color: models.DefaultCalendarColor, CreatedBy: owner.ID}
	err = tx.QueryRow(ctx, `
		INSERT INTO calendars (name, color, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, cal.Name, cal.Color, cal.CreatedBy).Scan(&cal.ID, &cal.CreatedAt, &cal.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create calendar: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO calendar_members (calendar_id, user_id, role)
		VALUES ($1, $2, $3)
	`, cal.ID, owner.ID, models.RoleOwner)
	if err != nil {
		t.Fatalf("failed to add owner as member: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return cal
}

// AddMember adds profile to cal with role
func (f *Fixtures) AddMember(t *testing.T, cal *models.Calendar, profile *models.Profile, role string) {
	t.Helper()

	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO calendar_members (calendar_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (calendar_id, user_id) DO NOTHING
	`, cal.ID, profile.ID, role)
	if err != nil {
		t.Fatalf("failed to add calendar member: %v", err)
	}
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()

	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}

// OAuthUserInfo creates verified test OAuth user info
func OAuthUserInfo(email, name, id string) *oauth.UserInfo {
	return &oauth.UserInfo{
		Email:     email,
		Name:      name,
		AvatarURL: "https://example.com/avatar.png",
		ID:        id,
		Provider:  models.ProviderGoogle,
	}
}
