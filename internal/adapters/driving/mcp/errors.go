// Package mcp provides an MCP (Model Context Protocol) server adapter for Annotate.
// It lets AI assistants browse profiles and datasets in the active workspace
// and move a local workspace into the remote store.
package mcp

import "errors"

// ErrMissingDataService is returned when the data service is not provided.
var ErrMissingDataService = errors.New("mcp: data service is required")

// ErrMigrationUnavailable is returned by the migration tool when no migration
// service is wired.
var ErrMigrationUnavailable = errors.New("mcp: migration is not available")
