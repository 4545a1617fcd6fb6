package auth

import (
	"testing"
	"time"

	"boutique/config"
	"boutique/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecurityKey:       "test_security_key_very_long_for_testing",
			ValidIssuer:       "boutique-api",
			ValidAudience:     "boutique-client",
			ExpiryMinutes:     15,
			RefreshExpiryDays: 7,
		},
	}
}

func testUser() *entity.User {
	return &entity.User{
		ID:        uuid.New(),
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	}
}

func TestJWTService_IssueAndValidateTokenPair(t *testing.T) {
	svc, err := NewJWTService(testJWTConfig())
	require.NoError(t, err)
	require.NotNil(t, svc)

	user := testUser()
	roles := []string{"visitor", "administrator"}

	accessToken, refreshToken, err := svc.IssueTokenPair(user, roles)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	claims, err := svc.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.Equal(t, roles, claims.Roles)
	assert.Equal(t, "boutique-api", claims.Issuer)

	gotID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotID)
}

func TestJWTService_RefreshTokensAreUniqueAndOpaque(t *testing.T) {
	svc, err := NewJWTService(testJWTConfig())
	require.NoError(t, err)

	user := testUser()
	_, first, err := svc.IssueTokenPair(user, nil)
	require.NoError(t, err)
	_, second, err := svc.IssueTokenPair(user, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Opaque tokens must not be parseable as JWTs.
	_, err = svc.ValidateAccessToken(first)
	assert.Error(t, err)
}

func TestJWTService_RejectsWrongKey(t *testing.T) {
	svc, err := NewJWTService(testJWTConfig())
	require.NoError(t, err)

	otherCfg := testJWTConfig()
	otherCfg.JWT.SecurityKey = "a_completely_different_signing_key_here"
	other, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	accessToken, _, err := other.IssueTokenPair(testUser(), nil)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(accessToken)
	assert.Error(t, err)
	_, err = svc.ClaimsFromExpiredToken(accessToken)
	assert.Error(t, err)
}

func TestJWTService_RejectsAlgorithmSubstitution(t *testing.T) {
	svc, err := NewJWTService(testJWTConfig())
	require.NoError(t, err)

	// A token declaring alg=none must never validate, with or without
	// expiry checking.
	claims := jwt.MapClaims{
		"sub": uuid.New().String(),
		"iss": "boutique-api",
		"aud": "boutique-client",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(unsigned)
	assert.Error(t, err)
	_, err = svc.ClaimsFromExpiredToken(unsigned)
	assert.Error(t, err)
}

func TestJWTService_ClaimsFromExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	user := testUser()
	expired := signTestToken(t, cfg, user.ID, "boutique-api", "boutique-client",
		time.Now().Add(-time.Hour))

	// The normal path rejects it.
	_, err = svc.ValidateAccessToken(expired)
	assert.Error(t, err)

	// The refresh path recovers the claims.
	claims, err := svc.ClaimsFromExpiredToken(expired)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestJWTService_ExpiredPathStillChecksIssuerAndAudience(t *testing.T) {
	cfg := testJWTConfig()
	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	badIssuer := signTestToken(t, cfg, uuid.New(), "someone-else", "boutique-client",
		time.Now().Add(-time.Hour))
	_, err = svc.ClaimsFromExpiredToken(badIssuer)
	assert.Error(t, err)

	badAudience := signTestToken(t, cfg, uuid.New(), "boutique-api", "someone-else",
		time.Now().Add(-time.Hour))
	_, err = svc.ClaimsFromExpiredToken(badAudience)
	assert.Error(t, err)
}

func TestJWTService_HashRefreshToken(t *testing.T) {
	svc, err := NewJWTService(testJWTConfig())
	require.NoError(t, err)

	raw, err := svc.NewOpaqueToken()
	require.NoError(t, err)

	hash := svc.HashRefreshToken(raw)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, raw, hash)

	// Deterministic, so lookups by hash work.
	assert.Equal(t, hash, svc.HashRefreshToken(raw))
	assert.NotEqual(t, hash, svc.HashRefreshToken(raw+"x"))
}

func TestJWTService_RefreshTokenDuration(t *testing.T) {
	svc, err := NewJWTService(testJWTConfig())
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, svc.RefreshTokenDuration())
}

func TestNewJWTService_RequiresConfig(t *testing.T) {
	cfg := testJWTConfig()
	cfg.JWT.SecurityKey = ""
	_, err := NewJWTService(cfg)
	assert.Error(t, err)

	cfg = testJWTConfig()
	cfg.JWT.ValidIssuer = ""
	_, err = NewJWTService(cfg)
	assert.Error(t, err)
}

func signTestToken(t *testing.T, cfg *config.Config, userID uuid.UUID, issuer, audience string, expiry time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iss": issuer,
		"aud": audience,
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": expiry.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(cfg.JWT.SecurityKey))
	require.NoError(t, err)
	return signed
}
