package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(access, refresh time.Duration) *JWTService {
	return NewJWTService("test-secret", access, refresh)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWT(15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(userID, "traveler@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(15*60), pair.ExpiresIn)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "traveler@example.com", claims.Email)
	assert.Equal(t, "tripstitch-api", claims.Issuer)

	refreshUser, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, refreshUser)
}

func TestJWTService_TokensAreNotInterchangeable(t *testing.T) {
	svc := newTestJWT(15*time.Minute, 24*time.Hour)

	pair, err := svc.GenerateTokenPair(uuid.New(), "traveler@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	pair, err := NewJWTService("secret-1", time.Minute, time.Hour).GenerateTokenPair(uuid.New(), "a@example.com")
	require.NoError(t, err)

	other := NewJWTService("secret-2", time.Minute, time.Hour)

	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorContains(t, err, "failed to parse token")

	_, err = other.ValidateRefreshToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWT(time.Millisecond, time.Millisecond)

	pair, err := svc.GenerateTokenPair(uuid.New(), "a@example.com")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)

	_, err = svc.ValidateRefreshToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestJWTService_Malformed(t *testing.T) {
	svc := newTestJWT(time.Minute, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "eyJhbGciOiJIUzI1NiJ9."} {
		_, err := svc.ValidateAccessToken(token)
		assert.Error(t, err, token)
	}
}

func TestJWTService_RefreshTokensAreUnique(t *testing.T) {
	svc := newTestJWT(time.Minute, time.Hour)
	userID := uuid.New()

	first, err := svc.GenerateTokenPair(userID, "a@example.com")
	require.NoError(t, err)
	second, err := svc.GenerateTokenPair(userID, "a@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, HashToken(first.RefreshToken), HashToken(second.RefreshToken))
	assert.Len(t, HashToken(first.RefreshToken), 64)
}
