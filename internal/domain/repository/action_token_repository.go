package repository

import (
	"context"
	"errors"

	"boutique/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrActionTokenNotFound is returned when no matching action token exists.
var ErrActionTokenNotFound = errors.New("action token not found")

// ActionTokenRepository persists single-use email-confirmation and
// password-reset tokens, hashed at rest.
type ActionTokenRepository interface {
	// Create persists a new action token. Any previous token for the same user
	// and purpose is replaced, so at most one is outstanding per flow.
	Create(ctx context.Context, token *entity.ActionToken) error

	// FindByHash retrieves a token by purpose, user, and stored hash.
	FindByHash(ctx context.Context, userID uuid.UUID, purpose entity.ActionTokenPurpose, tokenHash string) (*entity.ActionToken, error)

	// Delete removes a token by ID, consuming it.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes all tokens whose expiry has passed.
	DeleteExpired(ctx context.Context) error
}
