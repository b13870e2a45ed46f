// ABOUTME: Drop-and-rebuild normalization of raw export tables.
// ABOUTME: Resolves source aliases, parses numeric values, converts workout units.
package storage

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
)

// Normalizer carries the injected data tables normalization depends on.
// Alias must be total and deterministic; the unit maps are multipliers to
// minutes, kilometers, and kilocalories.
type Normalizer struct {
	Alias         func(string) string
	DurationUnits map[string]float64
	DistanceUnits map[string]float64
	EnergyUnits   map[string]float64
}

// NormalizeStats counts what one normalization pass produced.
type NormalizeStats struct {
	Sources          int `json:"sources"`
	Records          int `json:"records"`
	Workouts         int `json:"workouts"`
	Correlations     int `json:"correlations"`
	SkippedIntervals int `json:"skipped_intervals"`
	UnmappedUnits    int `json:"unmapped_units"`
}

var normTables = []string{"records_norm", "workouts_norm", "correlations_norm"}

const normSchema = `
CREATE TABLE records_norm (
  id INTEGER PRIMARY KEY,
  type TEXT,
  source_name TEXT,
  source_name_norm TEXT,
  unit TEXT,
  value TEXT,
  value_num REAL,
  start_dt TEXT,
  end_dt TEXT,
  creation_dt TEXT
);

CREATE TABLE workouts_norm (
  id INTEGER PRIMARY KEY,
  workout_activity_type TEXT,
  duration_min REAL,
  total_distance_km REAL,
  total_energy_kcal REAL,
  source_name TEXT,
  source_name_norm TEXT,
  start_dt TEXT,
  end_dt TEXT
);

CREATE TABLE correlations_norm (
  id INTEGER PRIMARY KEY,
  type TEXT,
  source_name TEXT,
  source_name_norm TEXT,
  start_dt TEXT,
  end_dt TEXT
);
`

// Normalize rebuilds the normalized tables from the raw store. The rebuild is
// idempotent: unchanged raw data produces identical output because the
// derived tables are dropped and recreated, never patched. The whole rebuild
// runs in one transaction so readers never observe a half-built store.
func (d *DB) Normalize(n Normalizer) (*NormalizeStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := &NormalizeStats{}

	aliases, err := d.buildSourceAliases(n.Alias)
	if err != nil {
		return nil, err
	}
	stats.Sources = len(aliases)

	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin normalize: %w", err)
	}
	defer tx.Rollback()

	for _, table := range normTables {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return nil, fmt.Errorf("drop %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(normSchema); err != nil {
		return nil, fmt.Errorf("create normalized tables: %w", err)
	}

	if err := d.normalizeRecords(tx, aliases, stats); err != nil {
		return nil, err
	}
	if err := d.normalizeWorkouts(tx, n, aliases, stats); err != nil {
		return nil, err
	}
	if err := d.normalizeCorrelations(tx, aliases, stats); err != nil {
		return nil, err
	}

	indexes := []string{
		"CREATE INDEX idx_records_norm_type ON records_norm(type)",
		"CREATE INDEX idx_records_norm_start ON records_norm(start_dt)",
		"CREATE INDEX idx_workouts_norm_type ON workouts_norm(workout_activity_type)",
		"CREATE INDEX idx_workouts_norm_start ON workouts_norm(start_dt)",
	}
	for _, stmt := range indexes {
		if _, err := tx.Exec(stmt); err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit normalize: %w", err)
	}
	return stats, nil
}

// buildSourceAliases collects every distinct source name across the raw
// tables and stores its canonical form. Replaced wholesale on each run.
func (d *DB) buildSourceAliases(alias func(string) string) (map[string]string, error) {
	sources := make(map[string]string)
	for _, table := range []string{
		"records", "workouts", "correlations",
		"clinical_records", "audiograms", "vision_prescriptions",
	} {
		rows, err := d.db.Query("SELECT DISTINCT source_name FROM " + table)
		if err != nil {
			return nil, fmt.Errorf("scan sources in %s: %w", table, err)
		}
		for rows.Next() {
			var name sql.NullString
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan source: %w", err)
			}
			if name.Valid && name.String != "" {
				sources[name.String] = alias(name.String)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sources in %s: %w", table, err)
		}
		rows.Close()
	}

	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin alias rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM source_aliases"); err != nil {
		return nil, fmt.Errorf("clear source aliases: %w", err)
	}
	for raw, norm := range sources {
		if _, err := tx.Exec(
			"INSERT INTO source_aliases (raw_source, normalized_source) VALUES (?, ?)",
			raw, norm); err != nil {
			return nil, fmt.Errorf("insert source alias: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit aliases: %w", err)
	}
	return sources, nil
}

func (d *DB) normalizeRecords(tx *sql.Tx, aliases map[string]string, stats *NormalizeStats) error {
	// Raw rows are read on a pool connection; WAL lets the rebuild
	// transaction write concurrently.
	rows, err := d.db.Query(`
		SELECT id, type, unit, value, source_name, creation_date, start_date, end_date
		FROM records ORDER BY id`)
	if err != nil {
		return fmt.Errorf("scan records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var typ, unit, value, source, creation, start, end sql.NullString
		if err := rows.Scan(&id, &typ, &unit, &value, &source, &creation, &start, &end); err != nil {
			return fmt.Errorf("scan record: %w", err)
		}

		startDT, endDT := truncDate(start.String), truncDate(end.String)
		if endDT < startDT {
			stats.SkippedIntervals++
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO records_norm (id, type, source_name, source_name_norm, unit,
			  value, value_num, start_dt, end_dt, creation_dt)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, typ.String, source.String, aliases[source.String], unit.String,
			value.String, numericOrNil(value.String), startDT, endDT,
			truncDate(creation.String)); err != nil {
			return fmt.Errorf("insert records_norm: %w", err)
		}
		stats.Records++
	}
	return rows.Err()
}

func (d *DB) normalizeWorkouts(tx *sql.Tx, n Normalizer, aliases map[string]string, stats *NormalizeStats) error {
	rows, err := d.db.Query(`
		SELECT id, workout_activity_type, duration, duration_unit,
		  total_distance, total_distance_unit, total_energy_burned,
		  total_energy_burned_unit, source_name, start_date, end_date
		FROM workouts ORDER BY id`)
	if err != nil {
		return fmt.Errorf("scan workouts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var typ, durUnit, distUnit, energyUnit, source, start, end sql.NullString
		var dur, dist, energy sql.NullFloat64
		if err := rows.Scan(&id, &typ, &dur, &durUnit, &dist, &distUnit,
			&energy, &energyUnit, &source, &start, &end); err != nil {
			return fmt.Errorf("scan workout: %w", err)
		}

		startDT, endDT := truncDate(start.String), truncDate(end.String)
		if endDT < startDT {
			stats.SkippedIntervals++
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO workouts_norm (id, workout_activity_type, duration_min,
			  total_distance_km, total_energy_kcal, source_name, source_name_norm,
			  start_dt, end_dt)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, typ.String,
			convertUnit(dur, durUnit.String, n.DurationUnits, stats),
			convertUnit(dist, distUnit.String, n.DistanceUnits, stats),
			convertUnit(energy, energyUnit.String, n.EnergyUnits, stats),
			source.String, aliases[source.String], startDT, endDT); err != nil {
			return fmt.Errorf("insert workouts_norm: %w", err)
		}
		stats.Workouts++
	}
	return rows.Err()
}

func (d *DB) normalizeCorrelations(tx *sql.Tx, aliases map[string]string, stats *NormalizeStats) error {
	rows, err := d.db.Query(`
		SELECT id, type, source_name, start_date, end_date
		FROM correlations ORDER BY id`)
	if err != nil {
		return fmt.Errorf("scan correlations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var typ, source, start, end sql.NullString
		if err := rows.Scan(&id, &typ, &source, &start, &end); err != nil {
			return fmt.Errorf("scan correlation: %w", err)
		}

		startDT, endDT := truncDate(start.String), truncDate(end.String)
		if endDT < startDT {
			stats.SkippedIntervals++
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO correlations_norm (id, type, source_name, source_name_norm,
			  start_dt, end_dt)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, typ.String, source.String, aliases[source.String],
			startDT, endDT); err != nil {
			return fmt.Errorf("insert correlations_norm: %w", err)
		}
		stats.Correlations++
	}
	return rows.Err()
}

// convertUnit scales a raw value into the canonical unit. Values carrying an
// unrecognized unit pass through unconverted and are counted, never dropped.
// An empty unit tag is taken as already canonical.
func convertUnit(v sql.NullFloat64, unit string, table map[string]float64, stats *NormalizeStats) interface{} {
	if !v.Valid {
		return nil
	}
	if unit == "" {
		return v.Float64
	}
	factor, ok := table[unit]
	if !ok {
		stats.UnmappedUnits++
		return v.Float64
	}
	return v.Float64 * factor
}

// numericRe defines "lexically numeric": plain decimal notation with optional
// sign and exponent. ParseFloat alone would also admit Inf/NaN/hex.
var numericRe = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumeric returns the parsed value when s is lexically numeric, nil
// otherwise. Locale-invariant: the decimal separator is always a period.
func ParseNumeric(s string) *float64 {
	if !numericRe.MatchString(s) {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func numericOrNil(s string) interface{} {
	v := ParseNumeric(s)
	if v == nil {
		return nil
	}
	return *v
}

// truncDate keeps the "2006-01-02 15:04:05" prefix of an export timestamp,
// dropping the zone suffix. Lexical comparison then matches chronological
// order within one export.
func truncDate(s string) string {
	if len(s) > 19 {
		return s[:19]
	}
	return s
}
