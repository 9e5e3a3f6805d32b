package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lakesync/internal/adapters/driving/mcp"
	"github.com/custodia-labs/lakesync/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can read the
synchronised documents.

The dataset is loaded in the background while the server runs; with
--watch it is kept current. Pass --sync=false to serve what the sqlite
store already holds.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  lakesync mcp serve --watch

  # HTTP mode (for MCP Inspector, remote access)
  lakesync mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "lakesync": {
        "command": "/path/to/lakesync",
        "args": ["mcp", "serve", "--watch"]
      }
    }
  }`,
	RunE: runMCPServe,
}

// serveWithSync is a flag for the serve command.
var serveWithSync bool

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().BoolVar(&serveWithSync, "sync", true, "Load the dataset while serving")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	a, err := newApp(cmd, modeSync)
	if err != nil {
		return err
	}
	defer a.Close()

	ports := &mcp.Ports{
		Document: a.documents,
		Sync:     a.sync,
	}

	server, err := mcp.NewServer(ports, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if serveWithSync {
		g.Go(func() error {
			// A failed sync leaves the server up with whatever was loaded.
			if err := a.sync.Sync(ctx); err != nil {
				logger.Warn("Background sync stopped: %v", err)
			}
			return nil
		})
	}

	if metricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(ctx, metricsAddr)
		})
	}

	g.Go(func() error {
		// The server ending stops everything else.
		defer cancel()
		if port > 0 {
			addr := fmt.Sprintf(":%d", port)
			fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s/mcp\n", addr)
			return server.RunHTTP(ctx, addr)
		}
		return server.Run(ctx)
	})

	return g.Wait()
}
