package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripstitch/tripstitch-api/internal/database"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/oauth"
)

var profileRowColumns = []string{
	"id", "email", "full_name", "avatar_url", "password_hash", "provider", "provider_id", "created_at", "updated_at",
}

func profileRow(id uuid.UUID, email string, hash *string) *pgxmock.Rows {
	now := time.Now()
	name := "Ana"
	provider := models.ProviderPassword
	return pgxmock.NewRows(profileRowColumns).
		AddRow(id, email, &name, nil, hash, provider, nil, now, now)
}

func setupProfileService(t *testing.T) (*ProfileService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewProfileService(&database.DB{Pool: mock}), mock
}

func TestProfileService_FindOrCreateFromOAuth_Existing(t *testing.T) {
	svc, mock := setupProfileService(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM profiles\s+WHERE provider = \$1 AND provider_id = \$2`).
		WithArgs("google", "g-1").
		WillReturnRows(profileRow(id, "ana@example.com", nil))

	profile, err := svc.FindOrCreateFromOAuth(context.Background(), &oauth.UserInfo{
		Email: "Ana@Example.com", ID: "g-1", Provider: "google",
	})

	require.NoError(t, err)
	assert.Equal(t, id, profile.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileService_FindOrCreateFromOAuth_LinksByEmail(t *testing.T) {
	svc, mock := setupProfileService(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM profiles`).
		WithArgs("google", "g-1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO profiles .+ ON CONFLICT \(email\) DO UPDATE`).
		WithArgs("ana@example.com", pgxmock.AnyArg(), pgxmock.AnyArg(), "google", "g-1").
		WillReturnRows(profileRow(id, "ana@example.com", nil))

	profile, err := svc.FindOrCreateFromOAuth(context.Background(), &oauth.UserInfo{
		Email: " ANA@example.com ", Name: "Ana", ID: "g-1", Provider: "google",
	})

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", profile.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileService_FindOrCreateFromOAuth_InvalidEmail(t *testing.T) {
	svc, mock := setupProfileService(t)

	_, err := svc.FindOrCreateFromOAuth(context.Background(), &oauth.UserInfo{Email: "not-an-email", ID: "g-1"})

	assert.True(t, IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupProfileService(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileService_GetByEmail_Normalizes(t *testing.T) {
	svc, mock := setupProfileService(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE email = \$1`).
		WithArgs("ana@example.com").
		WillReturnRows(profileRow(id, "ana@example.com", nil))

	profile, err := svc.GetByEmail(context.Background(), "ANA@EXAMPLE.COM")

	require.NoError(t, err)
	assert.Equal(t, id, profile.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileService_Update(t *testing.T) {
	svc, mock := setupProfileService(t)
	id := uuid.New()
	name := "Ana"

	mock.ExpectQuery(`UPDATE profiles SET`).
		WithArgs(&name, pgxmock.AnyArg(), id).
		WillReturnRows(profileRow(id, "ana@example.com", nil))

	profile, err := svc.Update(context.Background(), id, &name, nil)

	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}
