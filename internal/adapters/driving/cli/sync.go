package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
	"github.com/custodia-labs/lakesync/internal/logger"
)

// historyKeep is the number of sync runs retained in the run history.
const historyKeep = 100

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Load the dataset into the node store",
	Long: `Loads every document of the configured dataset into the node store.

With --watch the command keeps running after the initial load and applies
live changes until interrupted. With the sqlite store each run is recorded
and can be reviewed with "lakesync status".`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, modeSync)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		go func() {
			if err := serveMetrics(ctx, metricsAddr); err != nil {
				logger.Warn("Metrics endpoint stopped: %v", err)
			}
		}()
	}

	cmd.Printf("Synchronising %s/%s...\n", a.source.ProjectID, a.source.Dataset)
	if a.source.WatchMode {
		cmd.Println("Watching for changes, press Ctrl+C to stop.")
	}

	started := time.Now().UTC()
	syncErr := syncWithProgress(ctx, cmd, a.sync)

	status, _ := a.sync.Status(context.WithoutCancel(ctx))
	if a.runs != nil && status != nil {
		recordRun(context.WithoutCancel(ctx), a, status, started, syncErr)
	}

	if syncErr != nil {
		return fmt.Errorf("sync failed: %w", syncErr)
	}
	if status != nil {
		cmd.Printf("Synchronised %d documents (%d drafts, %d events, %d errors).\n",
			status.DocumentsProcessed, status.DraftsOverlaid, status.EventsApplied, status.ErrorCount)
	}
	return nil
}

// syncWithProgress runs sync while displaying progress updates on a terminal.
func syncWithProgress(ctx context.Context, cmd *cobra.Command, syncService driving.SyncService) error {
	// Start sync in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- syncService.Sync(ctx)
	}()

	interactive := isTerminal(cmd.OutOrStdout())

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := -1
	for {
		select {
		case err := <-errCh:
			if interactive && lastCount >= 0 {
				cmd.Println()
			}
			return err
		case <-ticker.C:
			if !interactive {
				continue
			}
			// Best effort: a failed status read skips one update.
			status, err := syncService.Status(ctx)
			if err != nil || status == nil {
				continue
			}
			count := status.DocumentsProcessed + status.EventsApplied
			if count != lastCount {
				cmd.Printf("\rProcessed %d documents, %d events", status.DocumentsProcessed, status.EventsApplied)
				lastCount = count
			}
		}
	}
}

// recordRun stores the outcome of a sync in the run history. Failures are
// logged; they never fail the sync itself.
func recordRun(ctx context.Context, a *app, status *driving.SyncStatus, started time.Time, syncErr error) {
	run := &domain.SyncRun{
		SessionID: status.SessionID,
		Dataset:   a.source.ProjectID + "/" + a.source.Dataset,
		StartedAt: started,
		EndedAt:   time.Now().UTC(),
		Documents: status.DocumentsProcessed,
		Drafts:    status.DraftsOverlaid,
		Events:    status.EventsApplied,
	}
	if syncErr != nil {
		run.Error = syncErr.Error()
	}

	if err := a.runs.RecordRun(ctx, run); err != nil {
		logger.Warn("Could not record sync run: %v", err)
		return
	}
	if err := a.runs.PruneHistory(ctx, historyKeep); err != nil {
		logger.Warn("Could not prune sync history: %v", err)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
