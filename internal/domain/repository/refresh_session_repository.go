package repository

import (
	"context"
	"errors"

	"boutique/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for refresh session persistence.
var (
	// ErrRefreshSessionNotFound is returned when a user holds no session row.
	ErrRefreshSessionNotFound = errors.New("refresh session not found")
)

// RefreshSessionRepository persists the single hashed refresh token each user
// may hold. Upsert is the only write path: login installs a fresh hash and
// expiry, rotation replaces the hash while leaving the expiry untouched.
type RefreshSessionRepository interface {
	// FindByUserID retrieves the session row for a user, expired or not.
	// Expiry is the caller's check; the verify step must distinguish
	// "no session" from "expired session" only as a non-match.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.RefreshSession, error)

	// Upsert installs the given hash and expiry for the user, replacing any
	// previous row. Rotation passes the previously stored expiry back in,
	// keeping the session lifetime anchored at login.
	Upsert(ctx context.Context, session *entity.RefreshSession) error

	// DeleteByUserID drops the user's session, ending it immediately.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes all sessions whose expiry has passed.
	DeleteExpired(ctx context.Context) error
}
