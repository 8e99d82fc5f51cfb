package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Ensure CredentialsTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*CredentialsTokenProvider)(nil)

// DefaultCacheTTL is how long a token read from the store is reused.
const DefaultCacheTTL = 30 * time.Second

// CredentialsTokenProvider reads the bearer token of the stored session.
// Expired sessions yield no token.
type CredentialsTokenProvider struct {
	store driven.CredentialsStore
	ttl   time.Duration

	mu          sync.RWMutex
	cachedToken string
	cacheExpiry time.Time
}

// NewCredentialsTokenProvider creates a provider backed by the credentials store.
func NewCredentialsTokenProvider(store driven.CredentialsStore) *CredentialsTokenProvider {
	return &CredentialsTokenProvider{store: store, ttl: DefaultCacheTTL}
}

// GetToken returns the session's access token, or "" when signed out.
func (p *CredentialsTokenProvider) GetToken(ctx context.Context) (string, error) {
	// Fast path: check cache with read lock
	p.mu.RLock()
	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		token := p.cachedToken
		p.mu.RUnlock()
		return token, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	creds, err := p.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("get credentials: %w", err)
	}
	if !creds.IsAuthenticated() {
		p.cachedToken = ""
		return "", nil
	}

	p.cachedToken = creds.AccessToken
	p.cacheExpiry = time.Now().Add(p.ttl)
	if !creds.Expiry.IsZero() && creds.Expiry.Before(p.cacheExpiry) {
		p.cacheExpiry = creds.Expiry
	}
	return p.cachedToken, nil
}

// Invalidate drops the cached token so the next call re-reads the store.
// Call after login or logout.
func (p *CredentialsTokenProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cachedToken = ""
	p.cacheExpiry = time.Time{}
}
