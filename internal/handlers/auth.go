package handlers

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/tripstitch/tripstitch-api/internal/config"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/oauth"
	"github.com/tripstitch/tripstitch-api/internal/services"
	"github.com/tripstitch/tripstitch-api/pkg/dto"
)

const (
	stateTTL    = 10 * time.Minute
	authCodeTTL = 30 * time.Second
)

type AuthHandler struct {
	cfg            *config.Config
	providers      oauth.Registry
	profileService ProfileServiceInterface
	accountService AccountServiceInterface
	tokenService   TokenServiceInterface
	jwtService     JWTServiceInterface
	states         sync.Map
	authCodes      sync.Map
}

type stateData struct {
	expiresAt time.Time
}

type authCodeData struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func NewAuthHandler(
	cfg *config.Config,
	providers oauth.Registry,
	profileService ProfileServiceInterface,
	accountService AccountServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
) *AuthHandler {
	return &AuthHandler{
		cfg:            cfg,
		providers:      providers,
		profileService: profileService,
		accountService: accountService,
		tokenService:   tokenService,
		jwtService:     jwtService,
	}
}

// SweepExpired drops abandoned OAuth states and unredeemed auth codes.
func (h *AuthHandler) SweepExpired(now time.Time) {
	h.states.Range(func(key, value any) bool {
		if sd, ok := value.(stateData); ok && now.After(sd.expiresAt) {
			h.states.Delete(key)
		}
		return true
	})
	h.authCodes.Range(func(key, value any) bool {
		if acd, ok := value.(authCodeData); ok && now.After(acd.expiresAt) {
			h.authCodes.Delete(key)
		}
		return true
	})
}

func (h *AuthHandler) SignUp(c *drift.Context) {
	var req dto.SignUpRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()

	profile, err := h.accountService.SignUp(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		respondError(c, err, "failed to create account")
		return
	}

	h.respondWithSession(c, 201, profile)
}

func (h *AuthHandler) SignIn(c *drift.Context) {
	var req dto.SignInRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	profile, err := h.accountService.SignIn(context.Background(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "failed to sign in")
		return
	}

	h.respondWithSession(c, 200, profile)
}

func (h *AuthHandler) GetConsentURL(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers.Get(provider)
	if !ok {
		c.BadRequest("unsupported provider: " + provider)
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		c.InternalServerError("failed to generate state")
		return
	}

	h.states.Store(state, stateData{expiresAt: time.Now().Add(stateTTL)})

	_ = c.JSON(200, dto.ConsentURLResponse{
		URL: p.GetConsentURL(state),
	})
}

func (h *AuthHandler) Callback(c *drift.Context) {
	p, ok := h.providers.Get(c.Param("provider"))
	if !ok {
		h.redirectWithError(c, "unsupported provider")
		return
	}

	state := c.QueryParam("state")
	if state == "" {
		h.redirectWithError(c, "missing state parameter")
		return
	}

	sd, ok := h.states.LoadAndDelete(state)
	if !ok {
		h.redirectWithError(c, "invalid or expired state")
		return
	}

	if sdTyped, ok := sd.(stateData); !ok || time.Now().After(sdTyped.expiresAt) {
		h.redirectWithError(c, "state expired")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		h.redirectWithError(c, "missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userInfo, err := p.ExchangeCode(ctx, code)
	if err != nil {
		h.redirectWithError(c, "failed to exchange code: "+err.Error())
		return
	}

	profile, err := h.profileService.FindOrCreateFromOAuth(ctx, userInfo)
	if err != nil {
		h.redirectWithError(c, "failed to create profile")
		return
	}

	authCode, err := oauth.GenerateState()
	if err != nil {
		h.redirectWithError(c, "failed to generate auth code")
		return
	}

	h.authCodes.Store(authCode, authCodeData{
		userID:    profile.ID,
		expiresAt: time.Now().Add(authCodeTTL),
	})

	redirectURL := fmt.Sprintf("%s?code=%s",
		h.cfg.FrontendCallbackURL,
		url.QueryEscape(authCode),
	)

	h.renderCallbackPage(c, redirectURL, "")
}

func (h *AuthHandler) ExchangeCode(c *drift.Context) {
	var req dto.ExchangeCodeRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Code == "" {
		c.BadRequest("code is required")
		return
	}

	acd, ok := h.authCodes.LoadAndDelete(req.Code)
	if !ok {
		c.Unauthorized("invalid or expired code")
		return
	}

	codeData, ok := acd.(authCodeData)
	if !ok || time.Now().After(codeData.expiresAt) {
		c.Unauthorized("code expired")
		return
	}

	profile, err := h.profileService.GetByID(context.Background(), codeData.userID)
	if err != nil {
		c.Unauthorized("profile not found")
		return
	}

	h.respondWithSession(c, 200, profile)
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	tokenHash := services.HashToken(req.RefreshToken)
	ctx := context.Background()

	storedUserID, err := h.tokenService.ValidateRefreshToken(ctx, tokenHash)
	if err != nil || storedUserID != userID {
		c.Unauthorized("refresh token not found or expired")
		return
	}

	profile, err := h.profileService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("profile not found")
		return
	}

	if err := h.tokenService.RevokeRefreshToken(ctx, tokenHash); err != nil {
		c.InternalServerError("failed to revoke old token")
		return
	}

	pair, err := h.issueTokens(ctx, profile)
	if err != nil {
		c.InternalServerError(err.Error())
		return
	}

	_ = c.JSON(200, pair)
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken != "" {
		_ = h.tokenService.RevokeRefreshToken(context.Background(), services.HashToken(req.RefreshToken))
	}

	_ = c.JSON(200, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(context.Background(), userID); err != nil {
		c.InternalServerError("failed to revoke tokens")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "all sessions logged out"})
}

func (h *AuthHandler) issueTokens(ctx context.Context, profile *models.Profile) (*dto.TokenResponse, error) {
	pair, err := h.jwtService.GenerateTokenPair(profile.ID, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens")
	}

	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(ctx, profile.ID, services.HashToken(pair.RefreshToken), expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token")
	}

	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (h *AuthHandler) respondWithSession(c *drift.Context, status int, profile *models.Profile) {
	pair, err := h.issueTokens(context.Background(), profile)
	if err != nil {
		c.InternalServerError(err.Error())
		return
	}

	_ = c.JSON(status, dto.AuthResponse{
		TokenResponse: *pair,
		Profile:       *toProfileResponse(profile),
	})
}

func (h *AuthHandler) redirectWithError(c *drift.Context, errMsg string) {
	redirectURL := fmt.Sprintf("%s?error=%s",
		h.cfg.FrontendCallbackURL,
		url.QueryEscape(errMsg),
	)
	h.renderCallbackPage(c, redirectURL, errMsg)
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: system-ui, -apple-system, sans-serif; background: #f0f9ff; color: #334155; margin: 0; padding: 40px 20px; }
        .card { max-width: 400px; margin: 0 auto; background: #fff; border: 1px solid #e2e8f0; border-radius: 12px; padding: 40px 32px; text-align: center; }
        h1 { font-size: 20px; font-weight: 600; color: {{.HeadingColor}}; margin: 0 0 8px 0; }
        p { color: #64748b; font-size: 14px; margin: 0 0 4px 0; }
        a { color: #3B82F6; }
    </style>
</head>
<body>
    <div class="card">
        <h1>{{.Heading}}</h1>
        <p>{{.Subtitle}}</p>
        <p><a href="{{.Redirect}}">Continue to Tripstitch</a></p>
    </div>
    <script>window.location.href = {{.Redirect}};</script>
</body>
</html>`))

type callbackView struct {
	Title        string
	Heading      string
	Subtitle     string
	HeadingColor template.CSS
	Redirect     string
}

func (h *AuthHandler) renderCallbackPage(c *drift.Context, redirect, errMsg string) {
	view := callbackView{
		Title:        "Signed in",
		Heading:      "You're signed in!",
		Subtitle:     "Taking you back to your trips...",
		HeadingColor: "#0f172a",
		Redirect:     redirect,
	}
	status := 200
	if errMsg != "" {
		view.Title = "Sign-in failed"
		view.Heading = "Sign-in failed"
		view.Subtitle = errMsg
		view.HeadingColor = "#991b1b"
		status = 400
	}

	var b strings.Builder
	if err := callbackPage.Execute(&b, view); err != nil {
		c.InternalServerError("failed to render page")
		return
	}
	_ = c.HTML(status, b.String())
}
