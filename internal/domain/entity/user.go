// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the core identity in the system. The password credential lives in a
// separate Credential record; only derived data is carried here.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	DateOfBirth    time.Time `json:"dateOfBirth"`
	EmailConfirmed bool      `json:"emailConfirmed"`
	Roles          Roles     `json:"roles"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// FullName joins first and last name for display and email salutations.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Credential stores the bcrypt password hash for a user. Kept apart from User
// so the hash never travels with profile reads.
type Credential struct {
	UserID       uuid.UUID
	PasswordHash string
	UpdatedAt    time.Time
}
