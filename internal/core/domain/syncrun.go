package domain

import "time"

// SyncRun records the outcome of one sync session.
type SyncRun struct {
	// SessionID identifies the sync session.
	SessionID string

	// Dataset is "<project>/<dataset>".
	Dataset string

	StartedAt time.Time
	EndedAt   time.Time

	// Documents is the number of documents materialized by the bulk load.
	Documents int

	// Drafts is the number of drafts overlaid.
	Drafts int

	// Events is the number of live events applied.
	Events int

	// Error is the failure that ended the run, if any.
	Error string
}

// Success reports whether the run ended without error.
func (r SyncRun) Success() bool {
	return r.Error == ""
}
