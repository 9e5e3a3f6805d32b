package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lakesync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
	"github.com/custodia-labs/lakesync/internal/logger"
)

// mockContentClient implements driven.ContentClient for testing.
type mockContentClient struct {
	export    string
	exportErr error

	events    []domain.ListenerEvent
	listenErr error

	mu          stdsync.Mutex
	listenQuery string
	listenTag   string
	listening   chan struct{}
}

var _ driven.ContentClient = (*mockContentClient)(nil)

func (m *mockContentClient) ExportStream(_ context.Context) (io.ReadCloser, error) {
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	return io.NopCloser(strings.NewReader(m.export)), nil
}

func (m *mockContentClient) Listen(ctx context.Context, query, tag string) (<-chan domain.ListenerEvent, <-chan error) {
	m.mu.Lock()
	m.listenQuery = query
	m.listenTag = tag
	m.mu.Unlock()

	events := make(chan domain.ListenerEvent)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		for _, event := range m.events {
			select {
			case <-ctx.Done():
				return
			case events <- event:
			}
		}
		if m.listening != nil {
			close(m.listening)
		}
		if m.listenErr != nil {
			errs <- m.listenErr
			return
		}
		<-ctx.Done()
	}()

	return events, errs
}

func (m *mockContentClient) Close() error { return nil }

func (m *mockContentClient) query() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listenQuery, m.listenTag
}

func TestSyncOrchestrator_BulkOnly(t *testing.T) {
	store := newTestStore()
	client := &mockContentClient{export: strings.Join([]string{
		`{"_id":"p1","_type":"post","title":"published"}`,
		`{"_id":"drafts.p1","_type":"post","title":"draft"}`,
		`{"_id":"p2","_type":"post"}`,
	}, "\n")}
	cfg := domain.SourceConfig{ProjectID: "proj", Dataset: "production", OverlayDrafts: true, Token: "t"}

	orch := NewSyncOrchestrator(cfg, client, store, testUID)
	orch.newID = func() string { return "session-1" }

	require.NoError(t, orch.Sync(context.Background()))

	assert.Equal(t, "draft", requireNode(t, store, "p1").Document["title"])
	requireNode(t, store, "p2")

	status, err := orch.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "session-1", status.SessionID)
	assert.False(t, status.Running)
	assert.False(t, status.Watching)
	assert.Equal(t, 2, status.DocumentsProcessed)
	assert.Equal(t, 1, status.DraftsOverlaid)
	assert.Equal(t, 0, status.ErrorCount)

	// Bulk-only sync never subscribes.
	query, _ := client.query()
	assert.Empty(t, query)
}

func TestSyncOrchestrator_ExportError(t *testing.T) {
	client := &mockContentClient{exportErr: errors.New("connection refused")}
	orch := NewSyncOrchestrator(domain.SourceConfig{ProjectID: "p", Dataset: "d"}, client, newTestStore(), testUID)

	err := orch.Sync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	status, _ := orch.Status(context.Background())
	assert.Equal(t, 1, status.ErrorCount)
	assert.False(t, status.Running)
}

func TestSyncOrchestrator_ErrorRecordDoesNotStartListener(t *testing.T) {
	client := &mockContentClient{export: `{"statusCode":401,"error":"Unauthorized"}`}
	cfg := domain.SourceConfig{ProjectID: "p", Dataset: "d", WatchMode: true}
	orch := NewSyncOrchestrator(cfg, client, newTestStore(), testUID)

	err := orch.Sync(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstream)

	query, _ := client.query()
	assert.Empty(t, query)
}

func TestSyncOrchestrator_WatchAppliesEvents(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	logger.SetVerbose(false)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	store := newTestStore()
	client := &mockContentClient{
		export: `{"_id":"p1","_type":"post","title":"v1"}`,
		events: []domain.ListenerEvent{
			event("drafts.p1", domain.TransitionUpdate, doc("drafts.p1", "post", "title", "v2")),
			event("p2", domain.TransitionAppear, doc("p2", "post")),
			event("p3", domain.TransitionUpdate, nil),
		},
		listening: make(chan struct{}),
	}
	cfg := domain.SourceConfig{ProjectID: "p", Dataset: "d", OverlayDrafts: true, WatchMode: true}

	orch := NewSyncOrchestrator(cfg, client, store, testUID)
	orch.newID = func() string { return "session-2" }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- orch.Sync(ctx) }()

	select {
	case <-client.listening:
	case <-time.After(5 * time.Second):
		t.Fatal("events were not consumed")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sync did not stop after cancel")
	}

	assert.Equal(t, "v2", requireNode(t, store, "p1").Document["title"])
	requireNode(t, store, "p2")

	query, tag := client.query()
	assert.Equal(t, ListenQuery(true), query)
	assert.Equal(t, "session-2", tag)

	status, _ := orch.Status(context.Background())
	assert.Equal(t, 2, status.EventsApplied)
	assert.Equal(t, 1, status.ErrorCount)
	assert.False(t, status.Watching)

	// Failed events reach the user without --verbose.
	assert.Contains(t, logs.String(), "[WARN] Failed to apply event on p3")
}

func TestSyncOrchestrator_ListenErrorIsReturned(t *testing.T) {
	client := &mockContentClient{listenErr: errors.New("channel error")}
	cfg := domain.SourceConfig{ProjectID: "p", Dataset: "d", WatchMode: true}
	orch := NewSyncOrchestrator(cfg, client, newTestStore(), testUID)

	err := orch.Sync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel error")
}

func TestSyncOrchestrator_RejectsConcurrentSync(t *testing.T) {
	client := &mockContentClient{listening: make(chan struct{})}
	cfg := domain.SourceConfig{ProjectID: "p", Dataset: "d", WatchMode: true}
	orch := NewSyncOrchestrator(cfg, client, newTestStore(), testUID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- orch.Sync(ctx) }()

	select {
	case <-client.listening:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not start")
	}

	err := orch.Sync(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	status, _ := orch.Status(context.Background())
	assert.True(t, status.Running)

	cancel()
	require.NoError(t, <-done)
}

func TestListenQuery(t *testing.T) {
	assert.Equal(t, `*[!(_id in path("_.**"))]`, ListenQuery(true))
	assert.Equal(t, `*[!(_id in path("_.**")) && !(_id in path("drafts.**"))]`, ListenQuery(false))
}

func TestSyncOrchestrator_RerunOnPersistentStore(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.NewStore(t.TempDir(), "proj/production", testTypeName, nil)
	require.NoError(t, err)
	defer store.Close()

	first := &mockContentClient{export: strings.Join([]string{
		`{"_id":"drafts.y","_type":"post"}`,
		`{"_id":"z","_type":"post"}`,
	}, "\n")}
	cfg := domain.SourceConfig{ProjectID: "proj", Dataset: "production", OverlayDrafts: true, Token: "t"}
	require.NoError(t, NewSyncOrchestrator(cfg, first, store, testUID).Sync(ctx))

	y, err := store.GetNodeByID(ctx, "y")
	require.NoError(t, err)
	assert.Equal(t, "drafts.y", y.DocumentID())

	// z is gone upstream, and drafts are no longer overlaid.
	second := &mockContentClient{export: `{"_id":"drafts.y","_type":"post"}`}
	cfg.OverlayDrafts = false
	require.NoError(t, NewSyncOrchestrator(cfg, second, store, testUID).Sync(ctx))

	for _, id := range []string{"y", "drafts.y", "z"} {
		_, err := store.GetNodeByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}
	names, err := store.TypeNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}
