// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DirectoryExporter: Produces LDIF exports of the group list and each group
//   - RecordParser: Decodes an export into raw records
//   - ArtifactStore: Intermediate artifacts (per-user files, user map, batch)
//   - PushClient: The remote push source protocol
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Publish run history. Without it, runs are only logged.
//   - MetricsRecorder: Run metrics. Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
