package auth

import (
	"context"
	"os"
	"strings"

	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// EnvToken is the environment variable that supplies a bearer token
// without persisting it.
const EnvToken = "ANNOTATE_TOKEN"

// Ensure StaticTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*StaticTokenProvider)(nil)

// StaticTokenProvider returns a fixed token.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider for a fixed token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: strings.TrimSpace(token)}
}

// NewEnvTokenProvider creates a provider for the token in ANNOTATE_TOKEN.
func NewEnvTokenProvider() *StaticTokenProvider {
	return NewStaticTokenProvider(os.Getenv(EnvToken))
}

// GetToken returns the fixed token.
func (p *StaticTokenProvider) GetToken(_ context.Context) (string, error) {
	return p.token, nil
}
