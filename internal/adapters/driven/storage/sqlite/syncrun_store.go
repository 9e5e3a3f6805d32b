package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
)

// runTimeFormat is fixed width so stored timestamps sort as text.
const runTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// syncRunStore implements driven.SyncRunStore.
type syncRunStore struct {
	store *Store
}

var _ driven.SyncRunStore = (*syncRunStore)(nil)

// RecordRun appends a finished run.
func (s *syncRunStore) RecordRun(ctx context.Context, run *domain.SyncRun) error {
	if run == nil || run.SessionID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (session_id, dataset, started_at, ended_at, documents, drafts, events, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.SessionID, run.Dataset,
		run.StartedAt.UTC().Format(runTimeFormat),
		run.EndedAt.UTC().Format(runTimeFormat),
		run.Documents, run.Drafts, run.Events,
		nullString(run.Error))

	if err != nil {
		return fmt.Errorf("recording sync run: %w", err)
	}
	return nil
}

// History returns recent runs.
// Runs are ordered by start time descending (most recent first).
func (s *syncRunStore) History(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT session_id, dataset, started_at, ended_at, documents, drafts, events, error
		FROM sync_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync runs: %w", err)
	}

	return runs, nil
}

// PruneHistory removes runs beyond the retention limit.
func (s *syncRunStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM sync_runs
		WHERE id NOT IN (
			SELECT id FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning sync runs: %w", err)
	}
	return nil
}

// scanSyncRun scans a sync run from *sql.Rows.
func scanSyncRun(rows *sql.Rows) (*domain.SyncRun, error) {
	var run domain.SyncRun
	var startedAt, endedAt string
	var errMsg sql.NullString

	if err := rows.Scan(&run.SessionID, &run.Dataset, &startedAt, &endedAt,
		&run.Documents, &run.Drafts, &run.Events, &errMsg); err != nil {
		return nil, fmt.Errorf("scanning sync run: %w", err)
	}

	if t, err := time.Parse(runTimeFormat, startedAt); err == nil {
		run.StartedAt = t
	}
	if t, err := time.Parse(runTimeFormat, endedAt); err == nil {
		run.EndedAt = t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}

	return &run, nil
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
