package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/pos/internal/domain/models"
)

// Authenticator exchanges credentials for a stored token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
}

// TokenStore holds the credentials of the logged in cashier.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Remove(ctx context.Context, keys ...string) error
}

// Service manages the cashier session.
type Service struct {
	authenticator Authenticator
	tokens        TokenStore
	logger        *zap.Logger
}

// NewService constructs the session service.
func NewService(authenticator Authenticator, tokens TokenStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{authenticator: authenticator, tokens: tokens, logger: logger}
}

// Login authenticates the cashier.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if email == "" || password == "" {
		return nil, models.NewValidationError("email and password are required", nil)
	}

	session, err := s.authenticator.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn("login failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return session, nil
}

// Logout forgets the stored credentials.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.tokens.Remove(ctx, models.TokenKey, models.UserNameKey); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info("cashier logged out")
	return nil
}

// LoggedIn reports whether a token is stored.
func (s *Service) LoggedIn(ctx context.Context) (bool, error) {
	token, ok, err := s.tokens.Get(ctx, models.TokenKey)
	if err != nil {
		return false, fmt.Errorf("read auth token: %w", err)
	}
	return ok && token != "", nil
}

// UserName returns the first name of the logged in cashier, if any.
func (s *Service) UserName(ctx context.Context) (string, error) {
	name, _, err := s.tokens.Get(ctx, models.UserNameKey)
	if err != nil {
		return "", fmt.Errorf("read user name: %w", err)
	}
	return name, nil
}
