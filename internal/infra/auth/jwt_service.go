// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"boutique/config"
	"boutique/internal/domain/entity"
	"boutique/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	securityKey []byte
	issuer      string
	audience    string
	accessTTL   time.Duration // Time-to-live for access tokens.
	refreshTTL  time.Duration // Time-to-live for refresh sessions.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.JWT.SecurityKey == "" {
		return nil, errors.New("jwt security key must be provided")
	}
	if cfg.JWT.ValidIssuer == "" || cfg.JWT.ValidAudience == "" {
		return nil, errors.New("jwt issuer and audience must be provided")
	}
	return &jwtService{
		securityKey: []byte(cfg.JWT.SecurityKey),
		issuer:      cfg.JWT.ValidIssuer,
		audience:    cfg.JWT.ValidAudience,
		accessTTL:   time.Duration(cfg.JWT.ExpiryMinutes) * time.Minute,
		refreshTTL:  time.Duration(cfg.JWT.RefreshExpiryDays) * 24 * time.Hour,
	}, nil
}

// IssueTokenPair creates a signed access token and an opaque refresh token for a user.
func (s *jwtService) IssueTokenPair(user *entity.User, roles []string) (string, string, error) {
	now := time.Now()
	claims := &service.AccessClaims{
		Name:  user.FullName(),
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.securityKey)
	if err != nil {
		return "", "", errors.Wrap(err, "sign access token")
	}

	refreshToken, err := s.NewOpaqueToken()
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateAccessToken checks signature, algorithm, issuer, audience and expiry.
func (s *jwtService) ValidateAccessToken(tokenString string) (*service.AccessClaims, error) {
	claims := &service.AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "validate access token")
	}
	return claims, nil
}

// ClaimsFromExpiredToken recovers claims from an access token without checking
// its expiry. Signature, algorithm, issuer and audience are still enforced so
// the refresh flow never honors a forged or foreign token.
func (s *jwtService) ClaimsFromExpiredToken(tokenString string) (*service.AccessClaims, error) {
	claims := &service.AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "parse expired token")
	}
	// Claims validation was bypassed above, so issuer and audience must be
	// checked by hand.
	if claims.Issuer != s.issuer {
		return nil, errors.New("token issuer mismatch")
	}
	if !audienceContains(claims.Audience, s.audience) {
		return nil, errors.New("token audience mismatch")
	}
	return claims, nil
}

// HashRefreshToken returns the storage form of a refresh token. Unsalted
// SHA-256 is sufficient here because the raw token carries 256 bits of
// entropy and cannot be brute-forced from its hash.
func (s *jwtService) HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// NewOpaqueToken generates a 256-bit random token, base64-encoded.
func (s *jwtService) NewOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate random token")
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// RefreshTokenDuration returns the configured duration for refresh sessions.
func (s *jwtService) RefreshTokenDuration() time.Duration {
	return s.refreshTTL
}

func (s *jwtService) keyFunc(token *jwt.Token) (any, error) {
	// WithValidMethods already restricts the algorithm, but fail closed here
	// as well so the key never signs for an unexpected method.
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, jwt.ErrSignatureInvalid
	}
	return s.securityKey, nil
}

func audienceContains(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if subtle.ConstantTimeCompare([]byte(a), []byte(want)) == 1 {
			return true
		}
	}
	return false
}
