package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tripstitch/tripstitch-api/internal/database"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/oauth"
)

var ErrProfileNotFound = errors.New("profile not found")

const profileColumns = `id, email, full_name, avatar_url, password_hash, provider, provider_id, created_at, updated_at`

type ProfileService struct {
	db *database.DB
}

func NewProfileService(db *database.DB) *ProfileService {
	return &ProfileService{db: db}
}

func scanProfile(row pgx.Row, p *models.Profile) error {
	return row.Scan(
		&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.PasswordHash,
		&p.Provider, &p.ProviderID, &p.CreatedAt, &p.UpdatedAt,
	)
}

// FindOrCreateFromOAuth returns the profile linked to a provider identity.
// An existing profile with the same email is linked rather than duplicated.
func (s *ProfileService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.Profile, error) {
	email, err := models.NormalizeEmail(info.Email)
	if err != nil {
		return nil, invalid("email", err.Error())
	}

	var profile models.Profile
	err = scanProfile(s.db.Pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE provider = $1 AND provider_id = $2
	`, info.Provider, info.ID), &profile)
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	err = scanProfile(s.db.Pool.QueryRow(ctx, `
		INSERT INTO profiles (email, full_name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			provider = EXCLUDED.provider,
			provider_id = EXCLUDED.provider_id,
			full_name = COALESCE(profiles.full_name, EXCLUDED.full_name),
			avatar_url = COALESCE(profiles.avatar_url, EXCLUDED.avatar_url),
			updated_at = NOW()
		RETURNING `+profileColumns+`
	`, email, nullableString(info.Name), nullableString(info.AvatarURL), info.Provider, info.ID), &profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return &profile, nil
}

func (s *ProfileService) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := scanProfile(s.db.Pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE id = $1
	`, id), &profile)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	normalized, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, invalid("email", err.Error())
	}

	var profile models.Profile
	err = scanProfile(s.db.Pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE email = $1
	`, normalized), &profile)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update changes only the fields that are non-nil.
func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, fullName, avatarURL *string) (*models.Profile, error) {
	var profile models.Profile
	err := scanProfile(s.db.Pool.QueryRow(ctx, `
		UPDATE profiles SET
			full_name = COALESCE($1, full_name),
			avatar_url = COALESCE($2, avatar_url),
			updated_at = NOW()
		WHERE id = $3
		RETURNING `+profileColumns+`
	`, fullName, avatarURL, id), &profile)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
