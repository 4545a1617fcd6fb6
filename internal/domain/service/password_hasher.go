package service

// PasswordHasher abstracts the password hashing scheme.
type PasswordHasher interface {
	// Hash derives a storable hash from a plaintext password.
	Hash(password string) (string, error)

	// Check reports whether a plaintext password matches a stored hash.
	Check(password, hash string) bool

	// ValidateStrength rejects passwords that fail the policy
	// (length, character-class requirements).
	ValidateStrength(password string) error
}
