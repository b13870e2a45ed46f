// ABOUTME: Read-only inventory summary over the finished store.
// ABOUTME: Row counts and time spans per entry type for operator sanity checks.
package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// TypeSummary is the per-type slice of the inventory: how many rows and the
// time span they cover.
type TypeSummary struct {
	Count    int    `json:"count" yaml:"count"`
	Earliest string `json:"earliest,omitempty" yaml:"earliest,omitempty"`
	Latest   string `json:"latest,omitempty" yaml:"latest,omitempty"`
}

// Inventory is the full summary of a store. Pure read; building one never
// mutates anything.
type Inventory struct {
	GeneratedAt        time.Time              `json:"generated_at" yaml:"generated_at"`
	Totals             map[string]int         `json:"totals" yaml:"totals"`
	RecordTypes        map[string]TypeSummary `json:"record_types" yaml:"record_types"`
	WorkoutTypes       map[string]TypeSummary `json:"workout_types" yaml:"workout_types"`
	ECGClassifications map[string]int         `json:"ecg_classifications" yaml:"ecg_classifications"`
}

// Inventory summarizes the store: totals per table, per-type counts and time
// spans for records and workouts, ECG classification counts.
func (d *DB) Inventory() (*Inventory, error) {
	inv := &Inventory{
		GeneratedAt:        time.Now().UTC(),
		Totals:             make(map[string]int),
		RecordTypes:        make(map[string]TypeSummary),
		WorkoutTypes:       make(map[string]TypeSummary),
		ECGClassifications: make(map[string]int),
	}

	for _, table := range []string{
		"records", "workouts", "correlations", "activity_summaries",
		"clinical_records", "audiograms", "vision_prescriptions",
		"workout_routes", "ecg_records",
	} {
		var count int
		if err := d.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		inv.Totals[table] = count
	}

	var err error
	if inv.RecordTypes, err = d.typeSummaries(
		"SELECT type, COUNT(*), MIN(start_date), MAX(start_date) FROM records GROUP BY type"); err != nil {
		return nil, err
	}
	if inv.WorkoutTypes, err = d.typeSummaries(
		"SELECT workout_activity_type, COUNT(*), MIN(start_date), MAX(start_date) FROM workouts GROUP BY workout_activity_type"); err != nil {
		return nil, err
	}

	rows, err := d.db.Query("SELECT classification, COUNT(*) FROM ecg_records GROUP BY classification")
	if err != nil {
		return nil, fmt.Errorf("count ecg classifications: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var class sql.NullString
		var count int
		if err := rows.Scan(&class, &count); err != nil {
			return nil, fmt.Errorf("scan ecg classification: %w", err)
		}
		inv.ECGClassifications[orUnknown(class)] = count
	}
	return inv, rows.Err()
}

func (d *DB) typeSummaries(query string) (map[string]TypeSummary, error) {
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("type summary: %w", err)
	}
	defer rows.Close()

	out := make(map[string]TypeSummary)
	for rows.Next() {
		var typ, earliest, latest sql.NullString
		var count int
		if err := rows.Scan(&typ, &count, &earliest, &latest); err != nil {
			return nil, fmt.Errorf("scan type summary: %w", err)
		}
		out[orUnknown(typ)] = TypeSummary{
			Count:    count,
			Earliest: earliest.String,
			Latest:   latest.String,
		}
	}
	return out, rows.Err()
}

func orUnknown(s sql.NullString) string {
	if !s.Valid || s.String == "" {
		return "Unknown"
	}
	return s.String
}
