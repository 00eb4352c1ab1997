// Package invite models the lifecycle of calendar invitations.
package invite

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/tripstitch/tripstitch-api/internal/models"
)

type State string

const (
	StatePending         State = "PENDING"
	StateAccepted        State = "ACCEPTED"
	StateRejected        State = "REJECTED"
	StateExpired         State = "EXPIRED"
	StateInvalid         State = "INVALID"
	StateAlreadyAccepted State = "ALREADY_ACCEPTED"
)

// DefaultTTL is how long a fresh invitation stays valid.
const DefaultTTL = 7 * 24 * time.Hour

const (
	tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"
	tokenLength   = 32
)

// StateOf returns the lifecycle state of a stored invitation.
func StateOf(inv *models.Invitation, now time.Time) State {
	switch {
	case inv.AcceptedAt != nil:
		return StateAccepted
	case inv.RejectedAt != nil:
		return StateRejected
	case !now.Before(inv.ExpiresAt):
		return StateExpired
	}
	return StatePending
}

// Resolve maps a token lookup result onto what the holder can do with it.
// A nil invitation means the token matched nothing.
func Resolve(inv *models.Invitation, now time.Time) State {
	if inv == nil {
		return StateInvalid
	}
	if s := StateOf(inv, now); s != StateAccepted {
		return s
	}
	return StateAlreadyAccepted
}

// IsActive reports whether the invitation still blocks a new one for the same email.
func IsActive(inv *models.Invitation, now time.Time) bool {
	return StateOf(inv, now) == StatePending
}

// NewToken returns an opaque URL-safe credential.
func NewToken() (string, error) {
	token, err := gonanoid.Generate(tokenAlphabet, tokenLength)
	if err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return token, nil
}

func ExpiryFrom(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now.Add(ttl)
}

// ValidRole reports whether role may be granted through an invitation.
// Ownership is never handed out this way.
func ValidRole(role string) bool {
	return role == models.RoleEditor || role == models.RoleViewer
}
