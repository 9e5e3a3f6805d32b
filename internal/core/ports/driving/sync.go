package driving

import "context"

// SyncService loads a dataset into the node store and keeps it current.
type SyncService interface {
	// Sync runs the bulk load and, in watch mode, then applies live
	// changes until ctx is cancelled or the feed ends.
	Sync(ctx context.Context) error

	// Status returns the state of the current or last sync.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// SessionID identifies the sync session.
	SessionID string

	// Running indicates if sync is currently in progress.
	Running bool

	// Watching indicates the live listener is active.
	Watching bool

	// DocumentsProcessed is the count of documents materialized.
	DocumentsProcessed int

	// DraftsOverlaid is the count of drafts applied by the overlay pass.
	DraftsOverlaid int

	// EventsApplied is the count of live events handled.
	EventsApplied int

	// ErrorCount is the number of errors encountered.
	ErrorCount int
}
