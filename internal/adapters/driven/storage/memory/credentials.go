package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Ensure CredentialsStore implements the interface.
var _ driven.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore is an in-memory implementation of driven.CredentialsStore.
type CredentialsStore struct {
	mu    sync.RWMutex
	creds *domain.Credentials
}

// NewCredentialsStore creates a new in-memory credentials store.
func NewCredentialsStore() *CredentialsStore {
	return &CredentialsStore{}
}

// Save stores the session.
func (s *CredentialsStore) Save(_ context.Context, creds domain.Credentials) error {
	if creds.AccessToken == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &creds
	return nil
}

// Get returns the session or nil.
func (s *CredentialsStore) Get(_ context.Context) (*domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return nil, nil
	}
	creds := *s.creds
	return &creds, nil
}

// Delete removes the session.
func (s *CredentialsStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
	return nil
}
