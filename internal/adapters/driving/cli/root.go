// Package cli implements the lakesync command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lakesync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lakesync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lakesync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lakesync/internal/connectors/contentlake"
	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
	"github.com/custodia-labs/lakesync/internal/core/ports/driving"
	"github.com/custodia-labs/lakesync/internal/core/services"
	"github.com/custodia-labs/lakesync/internal/logger"
	"github.com/custodia-labs/lakesync/internal/naming"
)

// version is set at build time with -ldflags "-X ...cli.version=1.2.3".
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
)

// Dataset flags override the config file.
var (
	flagProjectID     string
	flagDataset       string
	flagToken         string
	flagAPIHost       string
	flagTypePrefix    string
	flagOverlayDrafts bool
	flagWatch         bool
	flagTypes         []string
	flagStore         string
	flagDataDir       string
)

var rootCmd = &cobra.Command{
	Use:   "lakesync",
	Short: "Mirror a content dataset into a local document store",
	Long: `lakesync loads every document of a content dataset into a local node
store and, in watch mode, keeps it current from the live change feed.

With overlay_drafts enabled (and a token that can read them) drafts are
shown in place of their published version.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Print progress and debug output to stderr")
	pf.StringVar(&configDir, "config-dir", "", "Config directory (default ~/.lakesync)")

	pf.StringVar(&flagProjectID, "project-id", "", "Project ID")
	pf.StringVar(&flagDataset, "dataset", "", "Dataset name")
	pf.StringVar(&flagToken, "token", "", "API token, required to read drafts")
	pf.StringVar(&flagAPIHost, "api-host", "", "Override the API host")
	pf.StringVar(&flagTypePrefix, "type-prefix", "", "Prefix for collection names (default Sanity)")
	pf.BoolVar(&flagOverlayDrafts, "overlay-drafts", false, "Show drafts in place of published documents")
	pf.BoolVarP(&flagWatch, "watch", "w", false, "Keep listening for changes after the initial load")
	pf.StringSliceVar(&flagTypes, "types", nil, "Only sync these document types")
	pf.StringVar(&flagStore, "store", "", "Node store backend: memory or sqlite (default memory)")
	pf.StringVar(&flagDataDir, "data-dir", "", "Data directory for the sqlite store (default ~/.lakesync/data)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the CLI and sent as user agent.
func SetVersion(v string) {
	version = v
}

// app holds the services one command invocation works with.
type app struct {
	source    domain.SourceConfig
	sync      driving.SyncService
	documents driving.DocumentService

	// runs is nil unless the store persists.
	runs driven.SyncRunStore

	closers []io.Closer
}

// Close releases the store and client.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

// appMode says what a command needs the services for.
type appMode int

const (
	// modeSync honours watch mode.
	modeSync appMode = iota

	// modeRead never watches; reads return once loaded.
	modeRead
)

// newApp builds the services for a command. Replaced in tests.
var newApp = buildApp

// buildApp loads the config file, applies flag overrides and wires the
// store, client and services.
func buildApp(cmd *cobra.Command, mode appMode) (*app, error) {
	src, err := loadSource(cmd)
	if err != nil {
		return nil, err
	}
	if mode == modeRead {
		src.WatchMode = false
	}

	namer := naming.New(src)
	a := &app{source: src}

	var store driven.NodeStore
	switch src.Store {
	case "sqlite":
		sqlStore, err := sqlite.NewStore(src.DataDir, src.ProjectID+"/"+src.Dataset, namer.TypeName, src.Types)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Debug("Using sqlite store at %s", sqlStore.Path())
		store = sqlStore
		a.runs = sqlStore.SyncRunStore()
	default:
		store = memory.NewNodeStore(namer.TypeName, src.Types)
	}
	a.closers = append(a.closers, store)

	client := contentlake.NewClient(contentlake.ConfigFromSource(src, version))
	a.closers = append(a.closers, client)

	a.sync = services.NewSyncOrchestrator(src, client, store, namer.UID)
	a.documents = services.NewDocumentService(store, src.OverlayDrafts)
	return a, nil
}

// loadSource reads the config file and layers the flags that were set on top.
func loadSource(cmd *cobra.Command) (domain.SourceConfig, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return domain.SourceConfig{}, fmt.Errorf("loading config: %w", err)
	}
	src := file.SourceConfig(store)

	flags := cmd.Flags()
	if flags.Changed("project-id") {
		src.ProjectID = flagProjectID
	}
	if flags.Changed("dataset") {
		src.Dataset = flagDataset
	}
	if flags.Changed("token") {
		src.Token = flagToken
	}
	if src.Token == "" {
		src.Token = os.Getenv("LAKESYNC_TOKEN")
	}
	if flags.Changed("api-host") {
		src.APIHost = flagAPIHost
	}
	if flags.Changed("type-prefix") {
		src.TypePrefix = flagTypePrefix
	}
	if flags.Changed("overlay-drafts") {
		src.OverlayDrafts = flagOverlayDrafts
	}
	if flags.Changed("watch") {
		src.WatchMode = flagWatch
	}
	if flags.Changed("types") {
		src.Types = flagTypes
	}
	if flags.Changed("store") {
		src.Store = flagStore
	}
	if flags.Changed("data-dir") {
		src.DataDir = flagDataDir
	}

	src = src.WithDefaults()
	if err := src.Validate(); err != nil {
		return domain.SourceConfig{}, fmt.Errorf("invalid configuration (see %s): %w", store.Path(), err)
	}
	return src, nil
}
