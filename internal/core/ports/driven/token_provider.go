package driven

import "context"

// TokenProvider provides the bearer token for remote API calls.
type TokenProvider interface {
	// GetToken returns the current access token.
	// Returns an empty string and no error when there is no session.
	GetToken(ctx context.Context) (string, error)
}
