package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripstitch/tripstitch-api/internal/services"
)

func newTestJWTService() *services.JWTService {
	return services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)
}

func generateTestToken(t *testing.T, jwtSvc *services.JWTService, userID uuid.UUID, email string) string {
	t.Helper()
	pair, err := jwtSvc.GenerateTokenPair(userID, email)
	require.NoError(t, err)
	return pair.AccessToken
}

func newProtectedApp(mw drift.HandlerFunc, seen *uuid.UUID) http.Handler {
	app := drift.New()
	app.Use(mw)
	app.Get("/protected", func(c *drift.Context) {
		*seen = GetUserID(c)
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return app
}

func TestAuth_Rejections(t *testing.T) {
	jwtSvc := newTestJWTService()
	otherSvc := services.NewJWTService("another-secret", 15*time.Minute, 24*time.Hour)
	foreign := generateTestToken(t, otherSvc, uuid.New(), "x@example.com")
	pair, err := jwtSvc.GenerateTokenPair(uuid.New(), "x@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", "missing authorization header"},
		{"wrong scheme", "Token some-token", "invalid authorization header format"},
		{"scheme only", "Bearer", "invalid authorization header format"},
		{"empty token", "Bearer ", "invalid authorization header format"},
		{"garbage token", "Bearer invalid-token", "invalid or expired token"},
		{"wrong secret", "Bearer " + foreign, "invalid or expired token"},
		{"refresh token", "Bearer " + pair.RefreshToken, "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen uuid.UUID
			app := newProtectedApp(Auth(jwtSvc), &seen)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Equal(t, uuid.Nil, seen)
		})
	}
}

func TestAuth_ValidToken(t *testing.T) {
	jwtSvc := newTestJWTService()
	userID := uuid.New()
	email := "test@example.com"
	token := generateTestToken(t, jwtSvc, userID, email)

	var extractedEmail string
	app := drift.New()
	app.Use(Auth(jwtSvc))
	app.Get("/protected", func(c *drift.Context) {
		extractedEmail = GetUserEmail(c)
		_ = c.JSON(http.StatusOK, map[string]string{"user_id": GetUserID(c).String()})
	})

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		t.Run(scheme, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", scheme+" "+token)
			rec := httptest.NewRecorder()

			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), userID.String())
			assert.Equal(t, email, extractedEmail)
		})
	}
}

func TestAuth_QueryToken(t *testing.T) {
	jwtSvc := newTestJWTService()
	userID := uuid.New()
	token := generateTestToken(t, jwtSvc, userID, "test@example.com")

	var seen uuid.UUID
	app := newProtectedApp(Auth(jwtSvc), &seen)

	req := httptest.NewRequest(http.MethodGet, "/protected?access_token="+token, nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, seen)
}

func TestOptionalAuth(t *testing.T) {
	jwtSvc := newTestJWTService()
	userID := uuid.New()
	token := generateTestToken(t, jwtSvc, userID, "test@example.com")

	tests := []struct {
		name   string
		header string
		want   uuid.UUID
	}{
		{"anonymous", "", uuid.Nil},
		{"bad token is ignored", "Bearer nope", uuid.Nil},
		{"valid token", "Bearer " + token, userID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen uuid.UUID
			app := newProtectedApp(OptionalAuth(jwtSvc), &seen)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestGetters_NotSet(t *testing.T) {
	app := drift.New()

	var extractedUserID uuid.UUID
	var extractedEmail string
	app.Get("/test", func(c *drift.Context) {
		extractedUserID = GetUserID(c)
		extractedEmail = GetUserEmail(c)
		_ = c.JSON(http.StatusOK, nil)
	})

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, uuid.Nil, extractedUserID)
	assert.Empty(t, extractedEmail)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	app := drift.New()
	app.Use(RequestLogger(logger))
	app.Get("/health", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "method=GET")
	assert.Contains(t, buf.String(), "path=/health")
}
