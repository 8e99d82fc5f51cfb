package driving

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// MigrationRequest selects what to migrate and where.
type MigrationRequest struct {
	// SourceWorkspaceID is the local workspace to copy. Empty means the active workspace.
	SourceWorkspaceID string

	// TargetWorkspaceID is an existing remote workspace. Empty creates a new one.
	TargetWorkspaceID string

	// TargetName names the created remote workspace. Empty reuses the source name.
	TargetName string
}

// ProgressFunc receives migration events. It is called from worker goroutines
// and must be safe for concurrent use.
type ProgressFunc func(domain.MigrationEvent)

// MigrationService copies a local workspace into the remote store.
type MigrationService interface {
	// Migrate runs a migration to completion. Per-entity failures are reported
	// in the summary; only precondition failures return an error.
	Migrate(ctx context.Context, req MigrationRequest, progress ProgressFunc) (*domain.MigrationSummary, error)
}
