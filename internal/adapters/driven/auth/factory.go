package auth

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Ensure ChainTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*ChainTokenProvider)(nil)

// ChainTokenProvider asks each provider in turn and returns the first
// non-empty token.
type ChainTokenProvider struct {
	providers []driven.TokenProvider
}

// NewChainTokenProvider creates a chain. Nil providers are skipped.
func NewChainTokenProvider(providers ...driven.TokenProvider) *ChainTokenProvider {
	chain := &ChainTokenProvider{}
	for _, p := range providers {
		if p != nil {
			chain.providers = append(chain.providers, p)
		}
	}
	return chain
}

// GetToken returns the first non-empty token. An error from any provider stops the chain.
func (c *ChainTokenProvider) GetToken(ctx context.Context) (string, error) {
	for _, p := range c.providers {
		token, err := p.GetToken(ctx)
		if err != nil {
			return "", err
		}
		if token != "" {
			return token, nil
		}
	}
	return "", nil
}

// Invalidate drops cached tokens of every provider that caches.
func (c *ChainTokenProvider) Invalidate() {
	for _, p := range c.providers {
		if inv, ok := p.(interface{ Invalidate() }); ok {
			inv.Invalidate()
		}
	}
}

// NewDefaultTokenProvider builds the provider used by the CLI: the
// ANNOTATE_TOKEN environment variable wins over the stored session.
func NewDefaultTokenProvider(store driven.CredentialsStore) driven.TokenProvider {
	var stored driven.TokenProvider
	if store != nil {
		stored = NewCredentialsTokenProvider(store)
	}
	return NewChainTokenProvider(NewEnvTokenProvider(), stored)
}
