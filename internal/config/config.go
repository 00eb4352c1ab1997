package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Env         string `env:"ENV" envDefault:"development"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret        string        `env:"JWT_SECRET,required,notEmpty"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`

	// FrontendURL is where invitation and join links point.
	FrontendURL         string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	FrontendCallbackURL string `env:"FRONTEND_CALLBACK_URL" envDefault:"http://localhost:3000/auth/callback"`
	BaseURL             string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	InviteTTL       time.Duration `env:"INVITE_TTL" envDefault:"168h"`
	// InviteRetention is how long an expired invitation is kept before cleanup.
	InviteRetention time.Duration `env:"INVITE_RETENTION" envDefault:"720h"`
	CleanupSchedule string        `env:"CLEANUP_SCHEDULE" envDefault:"@hourly"`

	Google OAuthConfig `envPrefix:"GOOGLE_"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.InviteRetention < 0 {
		return nil, fmt.Errorf("INVITE_RETENTION must not be negative, got %s", cfg.InviteRetention)
	}

	if cfg.InviteTTL <= 0 {
		return nil, fmt.Errorf("INVITE_TTL must be positive, got %s", cfg.InviteTTL)
	}

	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// InviteLink is the shareable accept URL for a token invitation.
func (c *Config) InviteLink(token string) string {
	return c.FrontendURL + "/invite/accept/" + token
}

func (c *Config) CalendarLink(calendarID string) string {
	return c.FrontendURL + "/calendars/" + calendarID
}

// JoinLink is the generic request-to-join URL for a calendar.
func (c *Config) JoinLink(calendarID string) string {
	return c.FrontendURL + "/join/" + calendarID
}
