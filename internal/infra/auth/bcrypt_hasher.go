package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"boutique/config"
	domainerrors "boutique/internal/domain/errors"
	"boutique/internal/domain/service"
)

const defaultPasswordMinLength = 8

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost      int
	minLength int
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	minLength := defaultPasswordMinLength
	if cfg != nil && cfg.Auth != nil {
		if cfg.Auth.BcryptCost >= bcrypt.MinCost && cfg.Auth.BcryptCost <= bcrypt.MaxCost {
			cost = cfg.Auth.BcryptCost
		}
		if cfg.Auth.PasswordMinLength > 0 {
			minLength = cfg.Auth.PasswordMinLength
		}
	}
	return &bcryptHasher{cost: cost, minLength: minLength}
}

// NewBcryptHasherWithCost builds a hasher with an explicit cost factor.
// Intended for tests that want a cheap cost.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	return &bcryptHasher{cost: cost, minLength: defaultPasswordMinLength}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), err
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// ValidateStrength enforces the password policy: minimum length plus at
// least one uppercase letter, one lowercase letter, and one digit.
func (h *bcryptHasher) ValidateStrength(password string) error {
	if len(password) < h.minLength {
		return domainerrors.ErrPasswordStrength.WrapMessage("password is too short")
	}
	if !hasUppercase(password) {
		return domainerrors.ErrPasswordStrength.WrapMessage("password must contain an uppercase letter")
	}
	if !hasLowercase(password) {
		return domainerrors.ErrPasswordStrength.WrapMessage("password must contain a lowercase letter")
	}
	if !hasDigit(password) {
		return domainerrors.ErrPasswordStrength.WrapMessage("password must contain a digit")
	}
	return nil
}

func hasUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasLowercase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
