package service

import (
	"log/slog"
	"net/http"

	"github.com/hisaab-app/hisaab/internal/auth"
	"github.com/hisaab-app/hisaab/internal/ledger"
	"github.com/hisaab-app/hisaab/internal/middleware"
	"github.com/hisaab-app/hisaab/internal/models"
)

// AuthService handles registration, login, and session introspection.
type AuthService struct {
	authenticator *auth.PasswordAuthenticator
	jwtManager    *auth.JWTManager
	ledger        *ledger.Ledger
}

// NewAuthService creates a new AuthService.
func NewAuthService(authenticator *auth.PasswordAuthenticator, jwtManager *auth.JWTManager, l *ledger.Ledger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		ledger:        l,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates an account and returns a session token.
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		slog.Warn("registration failed", "email", req.Email, "error", err)
		writeError(w, err)
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

// Login verifies credentials and returns a session token.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "email", req.Email)
		writeError(w, err)
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// Me returns the authenticated user.
func (s *AuthService) Me(w http.ResponseWriter, r *http.Request) {
	user, err := s.ledger.User(middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
