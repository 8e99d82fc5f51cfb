package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
	"github.com/custodia-labs/annotate/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// invalidator is implemented by token providers that cache tokens.
type invalidator interface {
	Invalidate()
}

// AuthService manages the stored session. Tokens are issued by an external
// identity provider; this service only keeps them.
type AuthService struct {
	store  driven.CredentialsStore
	tokens driven.TokenProvider
}

// NewAuthService creates a new auth service.
func NewAuthService(store driven.CredentialsStore, tokens driven.TokenProvider) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// Login stores a bearer token, replacing any existing session.
func (s *AuthService) Login(ctx context.Context, token, account string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}
	creds := domain.Credentials{
		AccessToken:       token,
		TokenType:         "Bearer",
		AccountIdentifier: account,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.store.Save(ctx, creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	s.invalidate()
	logger.Info("signed in as %q", account)
	return nil
}

// Logout clears the stored session. Signing out twice is not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	s.invalidate()
	return nil
}

// Status returns the stored session, or nil when signed out.
func (s *AuthService) Status(ctx context.Context) (*domain.Credentials, error) {
	return s.store.Get(ctx)
}

// IsAuthenticated reports whether a bearer token is available from any source.
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	return requireToken(ctx, s.tokens) == nil
}

func (s *AuthService) invalidate() {
	if inv, ok := s.tokens.(invalidator); ok {
		inv.Invalidate()
	}
}
