package oauth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripstitch/tripstitch-api/internal/config"
	"golang.org/x/oauth2/google"
)

func TestGoogleProvider_Name(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{})
	assert.Equal(t, "google", provider.Name())
}

func TestGoogleProvider_GetConsentURL(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost/callback",
	})

	url := provider.GetConsentURL("test-state")

	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "client_id=test-client-id")
	assert.Contains(t, url, "state=test-state")
	assert.Contains(t, url, "prompt=select_account")
}

func TestGoogleProvider_Config(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{ClientID: "id", ClientSecret: "secret"})

	assert.Contains(t, provider.config.Scopes, "https://www.googleapis.com/auth/userinfo.email")
	assert.Contains(t, provider.config.Scopes, "https://www.googleapis.com/auth/userinfo.profile")
	assert.Equal(t, google.Endpoint.AuthURL, provider.config.Endpoint.AuthURL)
	assert.Equal(t, google.Endpoint.TokenURL, provider.config.Endpoint.TokenURL)
}

func newUserInfoServer(t *testing.T, status int, body string) *GoogleProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	provider := NewGoogleProvider(config.OAuthConfig{})
	provider.userInfoURL = server.URL
	return provider
}

func TestGoogleProvider_FetchUser(t *testing.T) {
	provider := newUserInfoServer(t, http.StatusOK,
		`{"id":"g-1","email":"ana@example.com","verified_email":true,"name":"Ana","picture":"https://img/ana.png"}`)

	info, err := provider.fetchUser(http.DefaultClient)

	require.NoError(t, err)
	assert.Equal(t, "g-1", info.ID)
	assert.Equal(t, "ana@example.com", info.Email)
	assert.Equal(t, "Ana", info.Name)
	assert.Equal(t, "https://img/ana.png", info.AvatarURL)
	assert.Equal(t, "google", info.Provider)
}

func TestGoogleProvider_FetchUser_Unverified(t *testing.T) {
	provider := newUserInfoServer(t, http.StatusOK,
		`{"id":"g-1","email":"ana@example.com","verified_email":false}`)

	_, err := provider.fetchUser(http.DefaultClient)

	assert.ErrorIs(t, err, ErrUnverifiedEmail)
}

func TestGoogleProvider_FetchUser_BadStatus(t *testing.T) {
	provider := newUserInfoServer(t, http.StatusUnauthorized, `{}`)

	_, err := provider.fetchUser(http.DefaultClient)

	assert.ErrorContains(t, err, "status 401")
}
