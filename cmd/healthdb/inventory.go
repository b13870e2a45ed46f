// ABOUTME: CLI command summarizing the store contents.
// ABOUTME: Table output by default; --format json or yaml for machine use.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/harperreed/healthdb/internal/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	invFormat string
	invOutput string
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Summarize the store contents",
	Long: `Summarize the store: row counts per table, and per-type counts with
earliest/latest timestamps for records and workouts.

Pure read; nothing is mutated. Use it after ingest or postprocess to check an
ingestion run landed what you expected.

EXAMPLES:

  healthdb inventory --db health.sqlite
  healthdb inventory --format json -o inventory.json
  healthdb inventory --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		inv, err := db.Inventory()
		if err != nil {
			return err
		}

		switch invFormat {
		case "json":
			data, err := json.MarshalIndent(inv, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal inventory: %w", err)
			}
			return writeOutput(append(data, '\n'))
		case "yaml":
			data, err := yaml.Marshal(inv)
			if err != nil {
				return fmt.Errorf("marshal inventory: %w", err)
			}
			return writeOutput(data)
		case "table":
			printInventory(inv)
			return nil
		default:
			return fmt.Errorf("unknown format: %s (use table, json, or yaml)", invFormat)
		}
	},
}

func writeOutput(data []byte) error {
	if invOutput == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(invOutput, data, 0644); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	color.Green("✓ Wrote %s", invOutput)
	return nil
}

func printInventory(inv *storage.Inventory) {
	bold := color.New(color.Bold)

	bold.Println("Totals")
	for _, table := range sortedKeys(inv.Totals) {
		fmt.Printf("  %-22s %d\n", table, inv.Totals[table])
	}

	if len(inv.RecordTypes) > 0 {
		bold.Println("Record types")
		printTypeSummaries(inv.RecordTypes)
	}
	if len(inv.WorkoutTypes) > 0 {
		bold.Println("Workout types")
		printTypeSummaries(inv.WorkoutTypes)
	}
	if len(inv.ECGClassifications) > 0 {
		bold.Println("ECG classifications")
		for _, class := range sortedKeys(inv.ECGClassifications) {
			fmt.Printf("  %-40s %d\n", class, inv.ECGClassifications[class])
		}
	}
}

func printTypeSummaries(summaries map[string]storage.TypeSummary) {
	names := make([]string, 0, len(summaries))
	for name := range summaries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := summaries[name]
		fmt.Printf("  %-56s %8d  %s … %s\n", name, s.Count,
			color.New(color.Faint).Sprint(s.Earliest),
			color.New(color.Faint).Sprint(s.Latest))
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	inventoryCmd.Flags().StringVar(&invFormat, "format", "table", "output format: table, json, yaml")
	inventoryCmd.Flags().StringVarP(&invOutput, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(inventoryCmd)
}
