// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Backends
//
// Backend is the storage strategy. Two implementations share one contract:
//
//   - Local: embedded SQLite store (or the in-memory store for tests)
//   - Remote: authenticated HTTP client for the multi-tenant store
//
// The Storage Router in core/services selects one Backend per call from the
// active workspace's storage kind.
//
// # Supporting Interfaces
//
//   - WorkspaceStore: Remote workspace CRUD
//   - WorkspaceStateStore: Local workspace catalogue and active selection
//   - TokenProvider: Bearer token for remote calls
//   - CredentialsStore: Persisted auth session
//   - ConfigStore: Application configuration
//   - NormaliserRegistry: Text extraction for imported files
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
