// ABOUTME: CLI command for streaming an export document into the raw store.
// ABOUTME: Batched writes; prints per-table counts and skip totals on completion.
package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harperreed/healthdb/internal/export"
	"github.com/harperreed/healthdb/internal/storage"
	"github.com/spf13/cobra"
)

var (
	ingestBatchSize    int
	ingestAppend       bool
	ingestWithMetadata bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [export.xml]",
	Short: "Stream a health export into raw SQLite tables",
	Long: `Stream a health export document into the raw tables of the store.

The export is parsed element by element, so memory stays bounded no matter
how large the document is. Rows are committed in batches; an interrupted run
loses at most the current uncommitted batch.

By default the raw tables are dropped and recreated, so re-running ingest on
the same export never duplicates rows. Use --append to keep existing rows and
continue id sequences instead.

Unrecognized elements are skipped and counted, never fatal. The run fails
only when the document itself cannot be decoded or is cut off mid-element.

EXAMPLES:

  healthdb ingest export.xml --db health.sqlite
  healthdb ingest export.xml --batch-size 5000
  healthdb ingest export.xml --with-metadata   # also store MetadataEntry rows`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exportPath := "export.xml"
		if len(args) > 0 {
			exportPath = args[0]
		}

		parser, err := export.Open(exportPath, ingestWithMetadata)
		if err != nil {
			return err
		}
		defer parser.Close()

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		writer, err := db.NewRawWriter(ingestBatchSize, ingestAppend)
		if err != nil {
			return err
		}

		run := storage.NewIngestRun(exportPath)
		for {
			entry, err := parser.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return err
			}
			if err := writer.Write(entry); err != nil {
				return err
			}
		}

		if err := writer.Close(); err != nil {
			return err
		}

		stats := writer.Stats()
		stats.SkippedElements = parser.Skipped()
		if err := db.RecordRun(run, stats); err != nil {
			return err
		}

		color.Green("✓ Ingested %s", exportPath)
		fmt.Printf("  records               %d\n", stats.Records)
		fmt.Printf("  workouts              %d\n", stats.Workouts)
		fmt.Printf("  correlations          %d\n", stats.Correlations)
		fmt.Printf("  activity summaries    %d\n", stats.ActivitySummaries)
		fmt.Printf("  clinical records      %d\n", stats.ClinicalRecords)
		fmt.Printf("  audiograms            %d\n", stats.Audiograms)
		fmt.Printf("  vision prescriptions  %d\n", stats.VisionPrescriptions)
		if ingestWithMetadata {
			fmt.Printf("  metadata entries      %d\n", stats.MetadataEntries)
		}
		if stats.SkippedElements > 0 {
			color.Yellow("  skipped elements      %d", stats.SkippedElements)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", storage.DefaultBatchSize,
		"entries per transaction")
	ingestCmd.Flags().BoolVar(&ingestAppend, "append", false,
		"append to existing raw tables instead of replacing them")
	ingestCmd.Flags().BoolVar(&ingestWithMetadata, "with-metadata", false,
		"store record MetadataEntry values (slower, larger store)")
	rootCmd.AddCommand(ingestCmd)
}
