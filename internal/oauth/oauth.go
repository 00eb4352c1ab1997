package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// ErrUnverifiedEmail is returned when the provider has not verified the address.
// Invitations are matched by email, so an unverified address could claim one.
var ErrUnverifiedEmail = errors.New("email address is not verified by the provider")

type UserInfo struct {
	Email     string
	Name      string
	AvatarURL string
	ID        string
	Provider  string
}

type Provider interface {
	GetConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*UserInfo, error)
	Name() string
}

// Registry looks providers up by name for the /auth/:provider routes.
type Registry map[string]Provider

func NewRegistry(providers ...Provider) Registry {
	r := make(Registry, len(providers))
	for _, p := range providers {
		r[p.Name()] = p
	}
	return r
}

func (r Registry) Get(name string) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}

func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
