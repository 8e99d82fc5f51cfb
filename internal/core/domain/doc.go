// Package domain defines the core business entities for the annotation data layer.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Workspace: A named container bound to either the local or the remote store
//   - Profile / ProfilePoint: An extraction profile and its ordered data points
//   - Dataset / Text: Uploaded text collections
//   - AnnotatedDataset / AnnotatedText / DataPoint: Annotation results
//   - MigrationSummary: The outcome of copying a local workspace to the remote store
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
