package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/overlay"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
	"github.com/custodia-labs/lakesync/internal/logger"
	"github.com/custodia-labs/lakesync/internal/metrics"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncService = (*SyncOrchestrator)(nil)

// SyncOrchestrator coordinates the bulk load and the live listener.
type SyncOrchestrator struct {
	cfg          domain.SourceConfig
	client       driven.ContentClient
	store        driven.NodeStore
	materializer *Materializer
	ingester     *Ingester
	newID        func() string

	// Status tracking
	mu     sync.RWMutex
	status driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator. uid derives node
// UIDs from logical ids.
func NewSyncOrchestrator(
	cfg domain.SourceConfig,
	client driven.ContentClient,
	store driven.NodeStore,
	uid func(id string) string,
) *SyncOrchestrator {
	if cfg.OverlayDrafts && cfg.Token == "" {
		logger.Warn("`overlay_drafts` set to true, but no `token` specified!")
	}

	materializer := NewMaterializer(store, uid, cfg.OverlayDrafts)
	return &SyncOrchestrator{
		cfg:          cfg,
		client:       client,
		store:        store,
		materializer: materializer,
		ingester:     NewIngester(materializer),
		newID:        uuid.NewString,
	}
}

// Sync runs the bulk load and, in watch mode, the live listener after it.
// The listener is only subscribed once the load, including the draft
// overlay pass, has completed. In watch mode Sync returns when ctx is
// cancelled or the listen feed fails.
func (o *SyncOrchestrator) Sync(ctx context.Context) error {
	session := overlay.NewSession(o.newID(), o.cfg.OverlayDrafts)
	if err := o.start(session.ID()); err != nil {
		return err
	}
	defer o.finish()

	logger.Info("Starting sync of %s/%s (session %s)", o.cfg.ProjectID, o.cfg.Dataset, session.ID())

	if _, err := o.load(ctx, session); err != nil {
		return err
	}

	if !o.cfg.WatchMode {
		return nil
	}
	return o.watch(ctx, session)
}

// Status returns the state of the current or last sync.
func (o *SyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	status := o.status
	return &status, nil
}

// load streams the export into the store.
func (o *SyncOrchestrator) load(ctx context.Context, session *overlay.Session) (*IngestResult, error) {
	logger.Section("Bulk load")
	started := time.Now()

	stream, err := o.client.ExportStream(ctx)
	if err != nil {
		o.update(func(s *driving.SyncStatus) { s.ErrorCount++ })
		return nil, fmt.Errorf("open export stream: %w", err)
	}
	defer stream.Close()

	result, err := o.ingester.Ingest(ctx, stream, session)
	if result != nil {
		o.update(func(s *driving.SyncStatus) {
			s.DocumentsProcessed += result.Materialized
			s.DraftsOverlaid += result.DraftsOverlaid
			s.ErrorCount += result.Skipped
		})
	}
	if err != nil {
		o.update(func(s *driving.SyncStatus) { s.ErrorCount++ })
		return result, err
	}

	metrics.IngestDuration.Observe(time.Since(started).Seconds())
	logger.Info("Bulk load complete: %d documents, %d drafts, %d skipped, %d dropped, %d removed",
		result.Materialized, result.DraftsOverlaid, result.Skipped, result.Dropped, result.Removed)
	return result, nil
}

// watch applies live events one at a time, in the order they arrive.
func (o *SyncOrchestrator) watch(ctx context.Context, session *overlay.Session) error {
	logger.Section("Watch")
	logger.Info("Watch mode enabled, starting a listener")

	listener := NewListener(o.store, o.materializer, session)
	events, errs := o.client.Listen(ctx, ListenQuery(o.cfg.OverlayDrafts), session.ID())

	o.update(func(s *driving.SyncStatus) { s.Watching = true })
	defer o.update(func(s *driving.SyncStatus) { s.Watching = false })

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return listenError(err)
			}

		case event, ok := <-events:
			if !ok {
				// The feed may have failed just before closing.
				if errs != nil {
					if err := <-errs; err != nil {
						return listenError(err)
					}
				}
				return nil
			}
			action, err := listener.Handle(ctx, event)
			if err != nil {
				logger.Warn("Failed to apply event on %s: %v", event.DocumentID, err)
				o.update(func(s *driving.SyncStatus) { s.ErrorCount++ })
				continue
			}
			if action != ActionNone {
				o.update(func(s *driving.SyncStatus) { s.EventsApplied++ })
			}
		}
	}
}

func listenError(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("listen: %w", err)
}

// ListenQuery returns the listen filter: system documents are always
// excluded, drafts unless they are overlaid.
func ListenQuery(overlayDrafts bool) string {
	filters := []string{`!(_id in path("_.**"))`}
	if !overlayDrafts {
		filters = append(filters, `!(_id in path("drafts.**"))`)
	}
	return "*[" + strings.Join(filters, " && ") + "]"
}

func (o *SyncOrchestrator) start(sessionID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status.Running {
		return domain.ErrSyncInProgress
	}
	o.status = driving.SyncStatus{
		SessionID: sessionID,
		Running:   true,
	}
	return nil
}

func (o *SyncOrchestrator) finish() {
	o.update(func(s *driving.SyncStatus) { s.Running = false })
}

func (o *SyncOrchestrator) update(fn func(s *driving.SyncStatus)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.status)
}
