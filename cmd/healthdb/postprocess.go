// ABOUTME: CLI command for normalization and auxiliary route/ECG imports.
// ABOUTME: Drop-and-rebuild normalized tables, then skip-existing file imports.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/healthdb/internal/config"
	"github.com/harperreed/healthdb/internal/storage"
	"github.com/spf13/cobra"
)

var (
	ppRoutesDir string
	ppECGDir    string
	ppForce     bool
	ppNoRoutes  bool
	ppNoECG     bool
	ppJobs      int
	ppConfig    string
)

var postprocessCmd = &cobra.Command{
	Use:   "postprocess",
	Short: "Normalize the raw store and import routes and ECGs",
	Long: `Post-process an ingested store: build source aliases, rebuild the
normalized tables, and import workout route (GPX) and ECG (CSV) files.

Normalization always drops and rebuilds, so running it twice on unchanged raw
data produces identical output. Workout durations, distances, and energy are
converted to minutes, kilometers, and kilocalories; values with unrecognized
units pass through unconverted and are counted.

File imports are keyed by file path. Already-imported files are skipped
before any parsing; --force deletes their rows and re-imports them.
Malformed files are skipped with a reason, never fatal.

The alias and unit tables can be overridden with a JSON config file:

  {
    "source_aliases": {"John's Apple Watch": "Apple Watch"},
    "distance_units": {"furlong": 0.201168}
  }

EXAMPLES:

  healthdb postprocess --db health.sqlite
  healthdb postprocess --routes-dir workout-routes --ecg-dir electrocardiograms
  healthdb postprocess --force          # re-import every route and ECG file
  healthdb postprocess --no-ecg --jobs 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(ppConfig)
		if err != nil {
			return err
		}

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		norm, err := db.Normalize(storage.Normalizer{
			Alias:         cfg.AliasFunc(),
			DurationUnits: cfg.DurationUnits,
			DistanceUnits: cfg.DistanceUnits,
			EnergyUnits:   cfg.EnergyUnits,
		})
		if err != nil {
			return err
		}

		color.Green("✓ Normalized store")
		fmt.Printf("  sources        %d\n", norm.Sources)
		fmt.Printf("  records        %d\n", norm.Records)
		fmt.Printf("  workouts       %d\n", norm.Workouts)
		fmt.Printf("  correlations   %d\n", norm.Correlations)
		if norm.SkippedIntervals > 0 {
			color.Yellow("  skipped intervals (end < start)  %d", norm.SkippedIntervals)
		}
		if norm.UnmappedUnits > 0 {
			color.Yellow("  unmapped units                   %d", norm.UnmappedUnits)
		}

		ctx := cmd.Context()

		if !ppNoRoutes {
			routes, err := db.ImportRoutes(ctx, ppRoutesDir, ppForce, ppJobs)
			if err != nil {
				return err
			}
			color.Green("✓ Routes: %d imported, %d already present, %d skipped",
				routes.Imported, routes.SkippedExisting, routes.SkippedFiles)
			for _, reason := range routes.Reasons {
				color.Yellow("  skipped %s", reason)
			}
		}

		if !ppNoECG {
			ecgs, err := db.ImportECGs(ctx, ppECGDir, ppForce, ppJobs)
			if err != nil {
				return err
			}
			color.Green("✓ ECGs: %d imported, %d already present, %d skipped",
				ecgs.Imported, ecgs.SkippedExisting, ecgs.SkippedFiles)
			for _, reason := range ecgs.Reasons {
				color.Yellow("  skipped %s", reason)
			}
		}

		return nil
	},
}

func init() {
	postprocessCmd.Flags().StringVar(&ppRoutesDir, "routes-dir", "workout-routes",
		"directory of GPX route files")
	postprocessCmd.Flags().StringVar(&ppECGDir, "ecg-dir", "electrocardiograms",
		"directory of ECG CSV files")
	postprocessCmd.Flags().BoolVar(&ppForce, "force", false,
		"delete and re-import routes/ECGs already in the store")
	postprocessCmd.Flags().BoolVar(&ppNoRoutes, "no-routes", false, "skip route import")
	postprocessCmd.Flags().BoolVar(&ppNoECG, "no-ecg", false, "skip ECG import")
	postprocessCmd.Flags().IntVar(&ppJobs, "jobs", 4, "parallel file parsers")
	postprocessCmd.Flags().StringVar(&ppConfig, "config", "",
		"JSON file overriding alias and unit tables")
	rootCmd.AddCommand(postprocessCmd)
}
