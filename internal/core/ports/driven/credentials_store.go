package driven

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// CredentialsStore persists the signed-in user's session.
// There is at most one session per device.
type CredentialsStore interface {
	// Save stores credentials, replacing any existing session.
	Save(ctx context.Context, creds domain.Credentials) error

	// Get retrieves the session.
	// Returns nil if no one is signed in.
	Get(ctx context.Context) (*domain.Credentials, error)

	// Delete removes the session.
	Delete(ctx context.Context) error
}
