// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - NodeStore / Collection: Host storage for materialized documents
//   - ContentClient: Export stream and live listen feed of the content platform
//   - ConfigStore: Application configuration
//   - SyncRunStore: History of finished sync runs
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
