// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Router picks the backend of the active workspace for every call;
// DataService, MigrationService and the rest are built on top of it.
// Services are pure Go with no CGO dependencies.
package services
