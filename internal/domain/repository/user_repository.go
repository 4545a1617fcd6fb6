// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"boutique/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for user persistence.
var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registration hits an existing email.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository defines the standard operations for user persistence.
// The application layer depends on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user together with their password credential.
	Create(ctx context.Context, user *entity.User, credential *entity.Credential) error

	// Update modifies an existing user's profile fields.
	Update(ctx context.Context, user *entity.User) error

	// FindCredential retrieves the password credential for a user.
	FindCredential(ctx context.Context, userID uuid.UUID) (*entity.Credential, error)

	// UpdateCredential replaces the stored password hash for a user.
	UpdateCredential(ctx context.Context, credential *entity.Credential) error

	// MarkEmailConfirmed flips the email-confirmed flag for a user.
	MarkEmailConfirmed(ctx context.Context, userID uuid.UUID) error
}
