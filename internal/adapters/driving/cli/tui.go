package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui"
	"github.com/custodia-labs/lakesync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lakesync/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the synchronised dataset in a terminal UI",
	Long: `Launch an interactive browser for the synchronised dataset.

The dataset is loaded in the background while the UI runs; with --watch
it is kept current and open lists refresh as changes arrive.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Open
  Esc      - Back
  +/-      - Resolve references deeper/less deep
  r        - Refresh
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

// tuiLogFile receives log output while the UI owns the terminal.
var tuiLogFile string

func init() {
	tuiCmd.Flags().StringVar(&tuiLogFile, "log-file", "", "Write logs to this file while the UI runs")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	a, err := newApp(cmd, modeSync)
	if err != nil {
		return err
	}
	defer a.Close()

	restore, err := redirectLogs(tuiLogFile)
	if err != nil {
		return err
	}
	defer restore()

	app, err := tui.NewApp(&tui.Ports{
		Document: a.documents,
		Sync:     a.sync,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := a.sync.Sync(ctx)
		p.Send(messages.SyncFinished{Err: err})
	}()

	_, err = p.Run()
	cancel()
	<-done
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// redirectLogs keeps log lines off the alternate screen. They go to path
// when set and are dropped otherwise.
func redirectLogs(path string) (func(), error) {
	var w io.Writer = io.Discard
	var f *os.File
	if path != "" {
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
	}
	logger.SetOutput(w)
	return func() {
		logger.SetOutput(os.Stderr)
		if f != nil {
			f.Close()
		}
	}, nil
}
