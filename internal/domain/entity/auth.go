package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshSession is the single refresh token record a user may hold at any
// instant. Only a SHA-256 hash of the raw token is persisted; the raw value is
// returned to the client exactly once. Rotation replaces TokenHash in place,
// so the previous token is invalid the moment a refresh succeeds. ExpiresAt is
// anchored at login and deliberately not extended by rotation: the session
// lifetime is absolute, bounded by the original login regardless of activity.
type RefreshSession struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the session is still within its expiry window.
func (s *RefreshSession) Active(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// ActionTokenPurpose names the one-shot flows backed by action tokens.
type ActionTokenPurpose string

const (
	// PurposeConfirmEmail tokens are emailed at registration and consumed by
	// the email-confirmation endpoint.
	PurposeConfirmEmail ActionTokenPurpose = "confirm_email"
	// PurposeResetPassword tokens are emailed by forgot-password and consumed
	// exactly once by reset-password.
	PurposeResetPassword ActionTokenPurpose = "reset_password"
)

// ActionToken is a single-use, time-bounded token tied to one user and one
// purpose. Like refresh tokens, only the hash is stored.
type ActionToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Purpose   ActionTokenPurpose
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
