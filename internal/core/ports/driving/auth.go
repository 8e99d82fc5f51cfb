package driving

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// AuthService manages the remote session.
type AuthService interface {
	// Login stores a bearer token issued by the identity provider.
	Login(ctx context.Context, token, account string) error

	// Logout clears the stored session.
	Logout(ctx context.Context) error

	// Status returns the current session, or nil when signed out.
	Status(ctx context.Context) (*domain.Credentials, error)

	// IsAuthenticated reports whether a usable token is available.
	IsAuthenticated(ctx context.Context) bool
}
