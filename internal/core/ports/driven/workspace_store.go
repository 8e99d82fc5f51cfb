package driven

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// WorkspaceStore persists workspaces in the remote store.
type WorkspaceStore interface {
	// Create stores a new workspace and returns it with its server-assigned id.
	Create(ctx context.Context, ws domain.Workspace) (*domain.Workspace, error)

	// Get retrieves a workspace by ID.
	Get(ctx context.Context, id string) (*domain.Workspace, error)

	// List returns the caller's workspaces.
	List(ctx context.Context) ([]domain.Workspace, error)

	// Update replaces a workspace's name and description.
	Update(ctx context.Context, ws domain.Workspace) error

	// Delete removes a workspace.
	Delete(ctx context.Context, id string) error
}

// WorkspaceStateStore persists the local workspace catalogue and the active selection.
type WorkspaceStateStore interface {
	// Load reads the state. A missing file yields an empty state.
	Load(ctx context.Context) (*domain.WorkspaceState, error)

	// Save writes the state.
	Save(ctx context.Context, state domain.WorkspaceState) error

	// Watch calls fn whenever the state changes outside this process.
	// It blocks until ctx is cancelled.
	Watch(ctx context.Context, fn func(domain.WorkspaceState)) error
}
