package remote

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// tokenSource adapts a driven.TokenProvider to oauth2.TokenSource so the
// oauth2 transport can attach the bearer header.
type tokenSource struct {
	provider driven.TokenProvider
}

// NewTokenSource returns an oauth2.TokenSource backed by provider.
func NewTokenSource(provider driven.TokenProvider) oauth2.TokenSource {
	return &tokenSource{provider: provider}
}

// Token returns the provider's current token as a bearer token.
func (s *tokenSource) Token() (*oauth2.Token, error) {
	token, err := s.provider.GetToken(context.Background())
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
