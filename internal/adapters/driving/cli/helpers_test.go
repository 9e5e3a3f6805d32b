package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
)

// mockSyncService implements driving.SyncService for testing.
type mockSyncService struct {
	status *driving.SyncStatus
	err    error
	calls  int
}

func (m *mockSyncService) Sync(_ context.Context) error {
	m.calls++
	return m.err
}

func (m *mockSyncService) Status(_ context.Context) (*driving.SyncStatus, error) {
	return m.status, nil
}

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	node  *domain.Node
	nodes []domain.Node
	types []string
	err   error

	gotDepth      int
	gotCollection string
}

func (m *mockDocumentService) Get(_ context.Context, _ string, resolveDepth int) (*domain.Node, error) {
	m.gotDepth = resolveDepth
	return m.node, m.err
}

func (m *mockDocumentService) List(_ context.Context, _ string) ([]domain.Node, error) {
	return m.nodes, m.err
}

func (m *mockDocumentService) ListCollection(_ context.Context, typeName string) ([]domain.Node, error) {
	m.gotCollection = typeName
	return m.nodes, m.err
}

func (m *mockDocumentService) Types(_ context.Context) ([]string, error) {
	return m.types, m.err
}

// mockRunStore implements driven.SyncRunStore for testing.
type mockRunStore struct {
	recorded []domain.SyncRun
	history  []domain.SyncRun
	pruned   int
	err      error
}

func (m *mockRunStore) RecordRun(_ context.Context, run *domain.SyncRun) error {
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, *run)
	return nil
}

func (m *mockRunStore) History(_ context.Context, _ int) ([]domain.SyncRun, error) {
	return m.history, m.err
}

func (m *mockRunStore) PruneHistory(_ context.Context, keep int) error {
	m.pruned = keep
	return nil
}

var errMockSync = errors.New("export failed")

// testSource is a valid configuration using the memory store.
func testSource() domain.SourceConfig {
	return domain.SourceConfig{ProjectID: "abc123", Dataset: "production"}.WithDefaults()
}

// useApp makes every command use a.
func useApp(t *testing.T, a *app) {
	t.Helper()
	old := newApp
	newApp = func(_ *cobra.Command, _ appMode) (*app, error) {
		return a, nil
	}
	t.Cleanup(func() { newApp = old })
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)
	t.Setenv("LAKESYNC_TOKEN", "")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default; cobra keeps values
// between Execute calls.
func resetFlags(t *testing.T) {
	t.Helper()
	var reset func(cmd *cobra.Command)
	reset = func(cmd *cobra.Command) {
		visit := func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		}
		cmd.PersistentFlags().VisitAll(visit)
		cmd.LocalNonPersistentFlags().VisitAll(visit)
		for _, c := range cmd.Commands() {
			reset(c)
		}
	}
	reset(rootCmd)
}
