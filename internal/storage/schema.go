// ABOUTME: SQLite schema for raw export tables and auxiliary import tables.
// ABOUTME: Raw tables mirror export attributes; normalized tables are built by the normalizer.
package storage

import "fmt"

// rawTables are the tables the ingest stage owns. Default ingestion drops and
// recreates them; --append leaves them in place.
var rawTables = []string{
	"records", "workouts", "correlations", "correlation_records",
	"activity_summaries", "clinical_records", "audiograms",
	"vision_prescriptions", "record_metadata",
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY,
  type TEXT,
  unit TEXT,
  value TEXT,
  source_name TEXT,
  source_version TEXT,
  device TEXT,
  creation_date TEXT,
  start_date TEXT,
  end_date TEXT
);

CREATE TABLE IF NOT EXISTS workouts (
  id INTEGER PRIMARY KEY,
  workout_activity_type TEXT,
  duration REAL,
  duration_unit TEXT,
  total_energy_burned REAL,
  total_energy_burned_unit TEXT,
  total_distance REAL,
  total_distance_unit TEXT,
  source_name TEXT,
  source_version TEXT,
  device TEXT,
  creation_date TEXT,
  start_date TEXT,
  end_date TEXT
);

CREATE TABLE IF NOT EXISTS correlations (
  id INTEGER PRIMARY KEY,
  type TEXT,
  source_name TEXT,
  source_version TEXT,
  device TEXT,
  creation_date TEXT,
  start_date TEXT,
  end_date TEXT
);

CREATE TABLE IF NOT EXISTS correlation_records (
  correlation_id INTEGER,
  record_id INTEGER
);

CREATE TABLE IF NOT EXISTS activity_summaries (
  id INTEGER PRIMARY KEY,
  date_components TEXT,
  active_energy_burned REAL,
  active_energy_burned_goal REAL,
  active_energy_burned_unit TEXT,
  apple_move_time REAL,
  apple_move_time_goal REAL,
  apple_exercise_time REAL,
  apple_exercise_time_goal REAL,
  apple_stand_hours REAL,
  apple_stand_hours_goal REAL
);

CREATE TABLE IF NOT EXISTS clinical_records (
  id INTEGER PRIMARY KEY,
  type TEXT,
  source_name TEXT,
  source_version TEXT,
  device TEXT,
  creation_date TEXT,
  start_date TEXT,
  end_date TEXT,
  display_name TEXT,
  extra_json TEXT
);

CREATE TABLE IF NOT EXISTS audiograms (
  id INTEGER PRIMARY KEY,
  source_name TEXT,
  source_version TEXT,
  device TEXT,
  creation_date TEXT,
  start_date TEXT,
  end_date TEXT,
  extra_json TEXT
);

CREATE TABLE IF NOT EXISTS vision_prescriptions (
  id INTEGER PRIMARY KEY,
  source_name TEXT,
  source_version TEXT,
  device TEXT,
  creation_date TEXT,
  start_date TEXT,
  end_date TEXT,
  extra_json TEXT
);

CREATE TABLE IF NOT EXISTS record_metadata (
  record_id INTEGER,
  key TEXT,
  value TEXT
);

CREATE TABLE IF NOT EXISTS ingest_runs (
  id TEXT PRIMARY KEY,
  export_path TEXT,
  started_at TEXT,
  finished_at TEXT,
  entries INTEGER,
  skipped INTEGER
);

CREATE TABLE IF NOT EXISTS source_aliases (
  raw_source TEXT PRIMARY KEY,
  normalized_source TEXT
);

CREATE TABLE IF NOT EXISTS workout_routes (
  id INTEGER PRIMARY KEY,
  file_path TEXT UNIQUE,
  start_time TEXT,
  end_time TEXT,
  point_count INTEGER,
  distance_km REAL,
  min_lat REAL,
  max_lat REAL,
  min_lon REAL,
  max_lon REAL
);

CREATE TABLE IF NOT EXISTS workout_route_points (
  route_id INTEGER,
  point_index INTEGER,
  lat REAL,
  lon REAL,
  ele REAL,
  time TEXT
);

CREATE TABLE IF NOT EXISTS ecg_records (
  id INTEGER PRIMARY KEY,
  file_path TEXT UNIQUE,
  recorded_date TEXT,
  classification TEXT,
  symptoms TEXT,
  sample_rate_hz REAL,
  sample_count INTEGER,
  lead TEXT,
  unit TEXT,
  device TEXT,
  software_version TEXT,
  extra_json TEXT
);

CREATE TABLE IF NOT EXISTS ecg_samples (
  ecg_id INTEGER,
  sample_index INTEGER,
  value REAL
);
`

// initSchema creates any missing tables.
func (d *DB) initSchema() error {
	_, err := d.db.Exec(schema)
	return err
}

// resetRawTables drops and recreates the raw export tables so a re-run never
// duplicates rows.
func (d *DB) resetRawTables() error {
	for _, table := range rawTables {
		if _, err := d.db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return d.initSchema()
}

// createRawIndexes builds the indexes the normalizer's scans rely on. Called
// after the bulk load so inserts stay fast.
func (d *DB) createRawIndexes() error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_records_type ON records(type)",
		"CREATE INDEX IF NOT EXISTS idx_records_start_date ON records(start_date)",
		"CREATE INDEX IF NOT EXISTS idx_records_source ON records(source_name)",
		"CREATE INDEX IF NOT EXISTS idx_workouts_type ON workouts(workout_activity_type)",
		"CREATE INDEX IF NOT EXISTS idx_workouts_start_date ON workouts(start_date)",
	}
	for _, stmt := range stmts {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
