// Package auth implements account registration and session tokens for the
// HTTP surface. User records live in the ledger's shared registry; this
// package only handles credentials.
package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/hisaab-app/hisaab/internal/ledger"
	"github.com/hisaab-app/hisaab/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// UserRegistry defines the registry operations the authenticator needs.
// Satisfied by *ledger.Ledger.
type UserRegistry interface {
	AddUser(ctx context.Context, spec ledger.UserSpec) (models.User, error)
	UserByEmail(email string) (models.User, error)
}

// PasswordAuthenticator implements password-based authentication using
// bcrypt.
type PasswordAuthenticator struct {
	registry UserRegistry
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(registry UserRegistry) *PasswordAuthenticator {
	return &PasswordAuthenticator{registry: registry}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, name, email, credential string) (models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return models.User{}, err
	}

	if _, err := a.registry.UserByEmail(email); err == nil {
		return models.User{}, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	return a.registry.AddUser(ctx, ledger.UserSpec{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
	})
}

// Authenticate verifies the email and password, returning the user if
// valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (models.User, error) {
	user, err := a.registry.UserByEmail(email)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}
