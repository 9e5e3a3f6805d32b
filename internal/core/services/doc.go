// Package services implements the driving port interfaces.
// Services contain the core sync logic: the bulk ingestion pipeline, the
// live listener state machine and the document read path, and orchestrate
// calls to driven ports (adapters).
package services
