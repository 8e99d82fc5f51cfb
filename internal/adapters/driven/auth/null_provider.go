package auth

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Ensure NullTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*NullTokenProvider)(nil)

// NullTokenProvider never has a session. Used for anonymous, local-only runs.
type NullTokenProvider struct{}

// NewNullTokenProvider creates a token provider with no session.
func NewNullTokenProvider() *NullTokenProvider {
	return &NullTokenProvider{}
}

// GetToken returns an empty string.
func (p *NullTokenProvider) GetToken(_ context.Context) (string, error) {
	return "", nil
}
