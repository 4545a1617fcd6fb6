// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import (
	"time"

	"boutique/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the claim surface carried by every access token. It must
// stay stable for downstream authorization consumers.
type AccessClaims struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *AccessClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService issues and validates the access/refresh token pair.
// Access tokens are signed HS256 JWTs; refresh tokens are opaque
// 256-bit random values, persisted only as hashes.
type TokenService interface {
	// IssueTokenPair creates a signed access token and a raw refresh token for
	// a user. The refresh token is returned in plaintext exactly once.
	IssueTokenPair(user *entity.User, roles []string) (accessToken string, refreshToken string, err error)

	// ValidateAccessToken checks signature, algorithm, issuer, audience, and
	// expiry, returning the claims on success.
	ValidateAccessToken(tokenString string) (*AccessClaims, error)

	// ClaimsFromExpiredToken recovers claims from a token whose expiry is
	// deliberately ignored. Signature, algorithm, issuer, and audience are
	// still enforced. Used exclusively by the refresh flow.
	ClaimsFromExpiredToken(tokenString string) (*AccessClaims, error)

	// HashRefreshToken returns the hash under which a refresh token is stored.
	// Unsalted SHA-256: acceptable only because the raw token already carries
	// 256 bits of entropy. Do not reuse for low-entropy secrets.
	HashRefreshToken(raw string) string

	// NewOpaqueToken generates a fresh 256-bit random token, base64-encoded.
	// Shared by the refresh and action-token flows.
	NewOpaqueToken() (string, error)

	// RefreshTokenDuration returns the fixed refresh session lifetime.
	RefreshTokenDuration() time.Duration
}
