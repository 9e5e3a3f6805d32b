package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent sync runs",
	Long:  `Lists the most recent sync runs recorded by the sqlite store.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

// statusLimit is a flag for the status command.
var statusLimit int

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "Number of runs to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, modeRead)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.runs == nil {
		return errors.New("sync history is only kept by the sqlite store (use --store sqlite)")
	}

	runs, err := a.runs.History(cmd.Context(), statusLimit)
	if err != nil {
		return fmt.Errorf("failed to read sync history: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No sync runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tDURATION\tDATASET\tDOCUMENTS\tDRAFTS\tEVENTS\tRESULT")
	for i := range runs {
		run := &runs[i]
		result := "ok"
		if !run.Success() {
			result = run.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.EndedAt.Sub(run.StartedAt).Round(time.Millisecond),
			run.Dataset, run.Documents, run.Drafts, run.Events, result)
	}
	return w.Flush()
}
