package driving

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// WorkspaceService manages workspaces and the active selection.
type WorkspaceService interface {
	// Active returns the active workspace, or domain.ErrNoActiveWorkspace.
	Active(ctx context.Context) (*domain.Workspace, error)

	// EnsureDefault creates and activates the default local workspace
	// when no workspace exists yet.
	EnsureDefault(ctx context.Context) (*domain.Workspace, error)

	// List returns local workspaces followed by remote ones when signed in.
	List(ctx context.Context) ([]domain.Workspace, error)

	// Create creates a workspace in the store named by kind.
	Create(ctx context.Context, ws domain.Workspace) (*domain.Workspace, error)

	// Switch makes the workspace with the given id active.
	Switch(ctx context.Context, id string) (*domain.Workspace, error)

	// Rename changes a workspace's name and description.
	Rename(ctx context.Context, id, name, description string) error

	// Delete removes a workspace. The active workspace cannot be deleted.
	Delete(ctx context.Context, id string) error
}
