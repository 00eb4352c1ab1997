package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tripstitch/tripstitch-api/internal/database"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const minPasswordLength = 8

// AccountService handles email and password sign-up and sign-in.
type AccountService struct {
	db   *database.DB
	cost int
}

func NewAccountService(db *database.DB) *AccountService {
	return &AccountService{db: db, cost: bcrypt.DefaultCost}
}

func (s *AccountService) SignUp(ctx context.Context, email, password, fullName string) (*models.Profile, error) {
	email, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, invalid("email", err.Error())
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var profile models.Profile
	err = scanProfile(s.db.Pool.QueryRow(ctx, `
		INSERT INTO profiles (email, full_name, password_hash, provider)
		VALUES ($1, $2, $3, $4)
		RETURNING `+profileColumns+`
	`, email, nullableString(strings.TrimSpace(fullName)), string(hash), models.ProviderPassword), &profile)
	if database.IsUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return &profile, nil
}

func (s *AccountService) SignIn(ctx context.Context, email, password string) (*models.Profile, error) {
	email, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var profile models.Profile
	err = scanProfile(s.db.Pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE email = $1
	`, email), &profile)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	// OAuth-only profiles have no password to compare against.
	if profile.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*profile.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &profile, nil
}
