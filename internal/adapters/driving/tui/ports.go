// Package tui provides interactive terminal views for annotate.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Migration copies a local workspace into the remote store.
	Migration driving.MigrationService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Migration == nil {
		return ErrMissingMigrationService
	}
	return nil
}
