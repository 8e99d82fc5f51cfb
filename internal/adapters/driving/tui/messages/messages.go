// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/annotate/internal/core/domain"
)

// MigrationProgress carries one migration event into the model.
type MigrationProgress struct {
	Event domain.MigrationEvent
}

// MigrationFinished is sent once Migrate has returned.
type MigrationFinished struct {
	Summary *domain.MigrationSummary
	Err     error
}
