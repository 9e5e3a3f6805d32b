package driven

import (
	"context"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

// SyncRunStore keeps a history of sync runs.
type SyncRunStore interface {
	// RecordRun appends a finished run.
	RecordRun(ctx context.Context, run *domain.SyncRun) error

	// History returns the most recent runs, newest first.
	History(ctx context.Context, limit int) ([]domain.SyncRun, error)

	// PruneHistory keeps only the most recent keep runs.
	PruneHistory(ctx context.Context, keep int) error
}
