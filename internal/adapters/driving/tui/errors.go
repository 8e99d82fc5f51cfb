package tui

import "errors"

// ErrMissingMigrationService is returned when the migration service is not provided.
var ErrMissingMigrationService = errors.New("tui: migration service is required")
