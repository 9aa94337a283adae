// Package domain defines the core business entities for adpush.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawRecord: One exported directory entry before normalisation
//   - User: A directory principal with its resolved hierarchy
//   - BatchDocument: The wire shape pushed to the remote source
//   - Report: Non-fatal problems collected during a crawl
//   - PublishRun: The outcome of one upload protocol run
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
