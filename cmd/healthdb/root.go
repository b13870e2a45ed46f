// ABOUTME: Root Cobra command for healthdb CLI.
// ABOUTME: Holds the shared --db flag pointing at the SQLite store.
package main

import (
	"github.com/harperreed/healthdb/internal/storage"
	"github.com/spf13/cobra"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "healthdb",
	Short: "Health export to SQLite pipeline",
	Long: `Healthdb converts a personal health export into a normalized SQLite
store for ad-hoc analytical queries and chart generation.

PIPELINE:

  $ healthdb ingest export.xml --db health.sqlite   # Stream the export into raw tables
  $ healthdb postprocess --db health.sqlite         # Build normalized tables, import routes/ECGs
  $ healthdb inventory --db health.sqlite           # Summarize what landed in the store

Each stage reads only the persisted output of the previous stage, so the
stages can run as separate invocations. Ingest replaces the raw tables by
default; postprocess fully rebuilds the normalized tables on every run, so
re-running it is always safe.

AUXILIARY IMPORTS:

  Route (GPX) and ECG (CSV) files are imported by file path. A file already
  in the store is skipped without being opened; --force deletes its rows and
  re-imports it.

MCP INTEGRATION:

  Run 'healthdb mcp' to expose read-only store queries to MCP-compatible AI
  assistants:

  {
    "mcpServers": {
      "healthdb": { "command": "healthdb", "args": ["mcp"] }
    }
  }`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", storage.DefaultDBPath(),
		"path to the SQLite store")
}
