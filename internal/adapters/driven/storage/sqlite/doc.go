// Package sqlite provides the local embedded store as a driven.Backend.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database holds every local workspace:
//
//   - Profiles and ProfilePoints (points cascade with their profile)
//   - Datasets and Texts (texts and annotated datasets cascade with their dataset)
//   - AnnotatedDatasets, AnnotatedTexts and DataPoints
//   - Settings: user settings and LLM configuration
//   - Credentials: the remote auth session
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory and embedded at compile time.
//
// # Data Location
//
// By default, the database is stored at ~/.annotate/data/local.db
//
// # Thread Safety
//
// All operations are thread-safe. Point batches run in a single transaction so
// readers never observe a partial renumbering.
package sqlite
