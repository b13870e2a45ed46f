// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based read-only MCP server over the store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/healthdb/internal/mcp"
	"github.com/harperreed/healthdb/internal/storage"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and exposes read-only queries over
the store; nothing can be mutated through it.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "healthdb": {
        "command": "healthdb",
        "args": ["mcp", "--db", "/path/to/health.sqlite"]
      }
    }
  }

AVAILABLE TOOLS:

  inventory       Store summary: counts and time spans per type
  query_records   Normalized health records by type and time range
  query_workouts  Normalized workouts (minutes, km, kcal)
  list_routes     Imported workout routes
  list_ecgs       Imported ECG recordings

AVAILABLE RESOURCES:

  healthdb://inventory   Full store summary
  healthdb://schema      Normalized schema reference`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		server, err := mcp.NewServer(db)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
