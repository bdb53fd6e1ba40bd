package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hisaab-app/hisaab/internal/ledger"
	"github.com/hisaab-app/hisaab/internal/models"
)

func newTestAuthenticator(t *testing.T) *PasswordAuthenticator {
	t.Helper()

	ldgr, err := ledger.New(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}
	return NewPasswordAuthenticator(ldgr)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	user, err := a.Register(ctx, "Rajesh Sharma", "rajesh@example.com", "super-secret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected user id to be assigned")
	}
	if user.PasswordHash == "super-secret" {
		t.Error("password stored in plaintext")
	}

	got, err := a.Authenticate(ctx, "rajesh@example.com", "super-secret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user %q, got %q", user.ID, got.ID)
	}

	if _, err := a.Authenticate(ctx, "rajesh@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "super-secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	a := newTestAuthenticator(t)

	if _, err := a.Register(context.Background(), "Rajesh Sharma", "rajesh@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	if _, err := a.Register(ctx, "Rajesh Sharma", "rajesh@example.com", "super-secret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := a.Register(ctx, "Imposter", "rajesh@example.com", "another-secret"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.User{ID: "u1", Email: "rajesh@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "rajesh@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTValidateRejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.User{ID: "u1", Email: "rajesh@example.com"}

	if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}

	other := NewJWTManager("different-secret", time.Hour)
	token, err := other.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	expired := NewJWTManager("test-secret", -time.Minute)
	token, err = expired.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
