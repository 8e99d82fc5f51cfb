package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Ensure WorkspaceStateStore implements the interface.
var _ driven.WorkspaceStateStore = (*WorkspaceStateStore)(nil)

// WorkspaceStateStore keeps workspace state in memory.
// Publish simulates a change made by another process.
type WorkspaceStateStore struct {
	mu       sync.Mutex
	state    domain.WorkspaceState
	watchers []func(domain.WorkspaceState)
}

// NewWorkspaceStateStore creates an empty state store.
func NewWorkspaceStateStore() *WorkspaceStateStore {
	return &WorkspaceStateStore{}
}

// Load returns a copy of the current state.
func (s *WorkspaceStateStore) Load(_ context.Context) (*domain.WorkspaceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := copyState(s.state)
	return &state, nil
}

// Save replaces the state.
func (s *WorkspaceStateStore) Save(_ context.Context, state domain.WorkspaceState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = copyState(state)
	return nil
}

// Watch registers fn and blocks until ctx is cancelled.
func (s *WorkspaceStateStore) Watch(ctx context.Context, fn func(domain.WorkspaceState)) error {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
	<-ctx.Done()
	return nil
}

// Publish replaces the state and notifies watchers, as if another process wrote it.
func (s *WorkspaceStateStore) Publish(state domain.WorkspaceState) {
	s.mu.Lock()
	s.state = copyState(state)
	watchers := slices.Clone(s.watchers)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(copyState(state))
	}
}

func copyState(state domain.WorkspaceState) domain.WorkspaceState {
	state.Local = slices.Clone(state.Local)
	if state.Active != nil {
		ws := *state.Active
		state.Active = &ws
	}
	return state
}
