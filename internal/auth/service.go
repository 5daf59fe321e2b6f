package auth

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/basteen-Dev/pavilion/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *Tokens
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *Tokens, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues an access token. The login is recorded in
// user_sessions; a failure to record it does not fail the login.
func (s *Service) Login(ctx context.Context, req LoginRequest, ip, ua string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	token, id, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSession(ctx, id, user.ID, expiresAt, ip, ua); err != nil {
		s.logger.Warn("register session", slog.Any("error", err))
	}
	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Role:        user.Role,
		CustomerID:  user.CustomerID,
	}, nil
}

// Logout revokes the token id until it expires and drops the session row.
func (s *Service) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if err := s.tokens.Revoke(ctx, tokenID, expiresAt); err != nil {
		return err
	}
	if err := s.repo.DeleteSession(ctx, tokenID); err != nil {
		s.logger.Warn("remove session", slog.Any("error", err))
	}
	return nil
}
