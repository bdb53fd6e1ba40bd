package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. Users are shared read-only reference
// data: the same user id may appear in many groups' member lists.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Email is the user's email address (unique, used for login).
	Email string `json:"email"`

	// Avatar is an optional profile picture URL.
	Avatar string `json:"avatar,omitempty"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized in API responses.
	PasswordHash string `json:"-"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"created_at"`
}

// NewUser creates a user with a fresh id and creation timestamp.
func NewUser(name, email, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
