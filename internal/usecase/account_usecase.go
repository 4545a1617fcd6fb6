// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"boutique/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email       string    `json:"email" validate:"required,email"`
	Password    string    `json:"password" validate:"required"`
	FirstName   string    `json:"firstName" validate:"required"`
	LastName    string    `json:"lastName" validate:"required"`
	PhoneNumber string    `json:"phoneNumber"`
	DateOfBirth time.Time `json:"dateOfBirth"`
}

// LoginInput defines the data required to authenticate.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput carries the expired access token and the raw refresh token.
type RefreshInput struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ConfirmEmailInput carries the emailed confirmation token.
type ConfirmEmailInput struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Token  string    `json:"token" validate:"required"`
}

// ResendConfirmationInput asks for a fresh confirmation email.
type ResendConfirmationInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPasswordInput starts the password reset flow.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordInput completes the password reset flow.
type ResetPasswordInput struct {
	UserID      uuid.UUID `json:"userId" validate:"required"`
	Token       string    `json:"token" validate:"required"`
	NewPassword string    `json:"newPassword" validate:"required"`
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	UserID      uuid.UUID `json:"-"`
	FirstName   string    `json:"firstName" validate:"required"`
	LastName    string    `json:"lastName" validate:"required"`
	PhoneNumber string    `json:"phoneNumber"`
	DateOfBirth time.Time `json:"dateOfBirth"`
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account's basic information.
type RegisterOutput struct {
	User *entity.User `json:"user"`
}

// TokenPairOutput returns an access/refresh token pair. The refresh token is
// the raw value, visible to the client exactly once.
type TokenPairOutput struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AccountUsecase defines the interface for account and session operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AccountUsecase interface {
	// Register creates an account and emails a confirmation link.
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)

	// Login verifies credentials and issues a token pair. Unknown email and
	// wrong password are indistinguishable in the returned error.
	Login(ctx context.Context, input LoginInput) (*TokenPairOutput, error)

	// Refresh rotates the refresh token and issues a new pair. Concurrent
	// refreshes for one user are serialized; the loser gets a rejection.
	Refresh(ctx context.Context, input RefreshInput) (*TokenPairOutput, error)

	// Logout ends the user's refresh session.
	Logout(ctx context.Context, userID uuid.UUID) error

	// ConfirmEmail consumes a confirmation token and marks the email verified.
	ConfirmEmail(ctx context.Context, input ConfirmEmailInput) error

	// ResendConfirmation emails a fresh confirmation link, invalidating the
	// previous one. Always succeeds from the caller's view so the endpoint
	// does not leak which emails are registered.
	ResendConfirmation(ctx context.Context, input ResendConfirmationInput) error

	// ForgotPassword emails a reset link. Like ResendConfirmation, it never
	// reveals whether the email is registered.
	ForgotPassword(ctx context.Context, input ForgotPasswordInput) error

	// ResetPassword consumes a reset token and installs a new password, ending
	// any refresh session.
	ResetPassword(ctx context.Context, input ResetPasswordInput) error

	// GetProfile returns the account's profile.
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// UpdateProfile modifies the editable profile fields.
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (*entity.User, error)
}
