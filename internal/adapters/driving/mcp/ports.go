package mcp

import (
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Data reads records in the active workspace.
	Data driving.DataService

	// Workspace reports the active workspace. Optional.
	Workspace driving.WorkspaceService

	// Migration copies a local workspace to the remote store. Optional.
	Migration driving.MigrationService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Data == nil {
		return ErrMissingDataService
	}
	return nil
}
