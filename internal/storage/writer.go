// ABOUTME: Batched raw-table writer consuming the export entry stream.
// ABOUTME: Commits every batchSize entries so a crash loses at most one batch.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/harperreed/healthdb/internal/models"
)

// DefaultBatchSize is the number of entries per transaction.
const DefaultBatchSize = 2000

// IngestStats counts what one ingest run wrote.
type IngestStats struct {
	Records             int `json:"records"`
	Workouts            int `json:"workouts"`
	Correlations        int `json:"correlations"`
	ActivitySummaries   int `json:"activity_summaries"`
	ClinicalRecords     int `json:"clinical_records"`
	Audiograms          int `json:"audiograms"`
	VisionPrescriptions int `json:"vision_prescriptions"`
	MetadataEntries     int `json:"metadata_entries"`
	SkippedElements     int `json:"skipped_elements"`
}

// Total returns the number of entries written across all raw tables.
func (s IngestStats) Total() int {
	return s.Records + s.Workouts + s.Correlations + s.ActivitySummaries +
		s.ClinicalRecords + s.Audiograms + s.VisionPrescriptions
}

// RawWriter writes parsed entries into the raw tables in batched
// transactions. Not safe for concurrent use; ingest is single-writer.
type RawWriter struct {
	d         *DB
	tx        *sql.Tx
	batchSize int
	pending   int
	nextID    map[models.EntryKind]int64
	stats     IngestStats
}

// NewRawWriter prepares the raw tables for a run. With appendMode false the
// tables are dropped and recreated; with it true new rows continue after the
// existing maximum ids.
func (d *DB) NewRawWriter(batchSize int, appendMode bool) (*RawWriter, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if !appendMode {
		if err := d.resetRawTables(); err != nil {
			return nil, fmt.Errorf("reset raw tables: %w", err)
		}
	}

	w := &RawWriter{d: d, batchSize: batchSize, nextID: make(map[models.EntryKind]int64)}
	for kind, table := range map[models.EntryKind]string{
		models.KindRecord:             "records",
		models.KindWorkout:            "workouts",
		models.KindCorrelation:        "correlations",
		models.KindActivitySummary:    "activity_summaries",
		models.KindClinicalRecord:     "clinical_records",
		models.KindAudiogram:          "audiograms",
		models.KindVisionPrescription: "vision_prescriptions",
	} {
		var max sql.NullInt64
		if err := d.db.QueryRow("SELECT MAX(id) FROM " + table).Scan(&max); err != nil {
			return nil, fmt.Errorf("seed ids for %s: %w", table, err)
		}
		w.nextID[kind] = max.Int64 + 1
	}

	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	w.tx = tx
	return w, nil
}

// Write persists one entry (including correlation children and metadata) and
// commits the current batch when it is full.
func (w *RawWriter) Write(e *models.Entry) error {
	if _, err := w.writeEntry(e); err != nil {
		return err
	}

	w.pending++
	if w.pending >= w.batchSize {
		if err := w.tx.Commit(); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
		tx, err := w.d.db.Begin()
		if err != nil {
			return fmt.Errorf("begin batch: %w", err)
		}
		w.tx = tx
		w.pending = 0
	}
	return nil
}

// Close commits the final partial batch and builds the raw indexes.
func (w *RawWriter) Close() error {
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("commit final batch: %w", err)
	}
	return w.d.createRawIndexes()
}

// Stats returns the per-table write counts so far.
func (w *RawWriter) Stats() IngestStats {
	return w.stats
}

func (w *RawWriter) writeEntry(e *models.Entry) (int64, error) {
	id := w.nextID[e.Kind]
	w.nextID[e.Kind] = id + 1

	var err error
	switch e.Kind {
	case models.KindRecord:
		_, err = w.tx.Exec(`
			INSERT INTO records (id, type, unit, value, source_name, source_version,
			  device, creation_date, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.Attr("type"), e.Attr("unit"), e.Attr("value"),
			e.Attr("sourceName"), e.Attr("sourceVersion"), e.Attr("device"),
			e.Attr("creationDate"), e.Attr("startDate"), e.Attr("endDate"))
		w.stats.Records++
	case models.KindWorkout:
		_, err = w.tx.Exec(`
			INSERT INTO workouts (id, workout_activity_type, duration, duration_unit,
			  total_energy_burned, total_energy_burned_unit, total_distance,
			  total_distance_unit, source_name, source_version, device,
			  creation_date, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.Attr("workoutActivityType"),
			nullFloat(e.Attr("duration")), e.Attr("durationUnit"),
			nullFloat(e.Attr("totalEnergyBurned")), e.Attr("totalEnergyBurnedUnit"),
			nullFloat(e.Attr("totalDistance")), e.Attr("totalDistanceUnit"),
			e.Attr("sourceName"), e.Attr("sourceVersion"), e.Attr("device"),
			e.Attr("creationDate"), e.Attr("startDate"), e.Attr("endDate"))
		w.stats.Workouts++
	case models.KindCorrelation:
		_, err = w.tx.Exec(`
			INSERT INTO correlations (id, type, source_name, source_version, device,
			  creation_date, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.Attr("type"), e.Attr("sourceName"), e.Attr("sourceVersion"),
			e.Attr("device"), e.Attr("creationDate"), e.Attr("startDate"),
			e.Attr("endDate"))
		w.stats.Correlations++
	case models.KindActivitySummary:
		_, err = w.tx.Exec(`
			INSERT INTO activity_summaries (id, date_components, active_energy_burned,
			  active_energy_burned_goal, active_energy_burned_unit, apple_move_time,
			  apple_move_time_goal, apple_exercise_time, apple_exercise_time_goal,
			  apple_stand_hours, apple_stand_hours_goal)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.Attr("dateComponents"),
			nullFloat(e.Attr("activeEnergyBurned")), nullFloat(e.Attr("activeEnergyBurnedGoal")),
			e.Attr("activeEnergyBurnedUnit"),
			nullFloat(e.Attr("appleMoveTime")), nullFloat(e.Attr("appleMoveTimeGoal")),
			nullFloat(e.Attr("appleExerciseTime")), nullFloat(e.Attr("appleExerciseTimeGoal")),
			nullFloat(e.Attr("appleStandHours")), nullFloat(e.Attr("appleStandHoursGoal")))
		w.stats.ActivitySummaries++
	case models.KindClinicalRecord:
		_, err = w.tx.Exec(`
			INSERT INTO clinical_records (id, type, source_name, source_version,
			  device, creation_date, start_date, end_date, display_name, extra_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.Attr("type"), e.Attr("sourceName"), e.Attr("sourceVersion"),
			e.Attr("device"), e.Attr("creationDate"), e.Attr("startDate"),
			e.Attr("endDate"), e.Attr("displayName"), attrsJSON(e))
		w.stats.ClinicalRecords++
	case models.KindAudiogram:
		_, err = w.tx.Exec(`
			INSERT INTO audiograms (id, source_name, source_version, device,
			  creation_date, start_date, end_date, extra_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.Attr("sourceName"), e.Attr("sourceVersion"), e.Attr("device"),
			e.Attr("creationDate"), e.Attr("startDate"), e.Attr("endDate"),
			attrsJSON(e))
		w.stats.Audiograms++
	case models.KindVisionPrescription:
		_, err = w.tx.Exec(`
			INSERT INTO vision_prescriptions (id, source_name, source_version, device,
			  creation_date, start_date, end_date, extra_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.Attr("sourceName"), e.Attr("sourceVersion"), e.Attr("device"),
			e.Attr("creationDate"), e.Attr("startDate"), e.Attr("endDate"),
			attrsJSON(e))
		w.stats.VisionPrescriptions++
	default:
		return 0, fmt.Errorf("unknown entry kind: %s", e.Kind)
	}
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", e.Kind, err)
	}

	if e.Kind == models.KindRecord {
		for _, kv := range e.Metadata {
			if _, err := w.tx.Exec(
				"INSERT INTO record_metadata (record_id, key, value) VALUES (?, ?, ?)",
				id, kv.Key, kv.Value); err != nil {
				return 0, fmt.Errorf("insert record metadata: %w", err)
			}
			w.stats.MetadataEntries++
		}
	}

	// Correlation sub-records become ordinary record rows, linked back to
	// their correlation.
	for _, child := range e.Children {
		childID, err := w.writeEntry(child)
		if err != nil {
			return 0, err
		}
		if _, err := w.tx.Exec(
			"INSERT INTO correlation_records (correlation_id, record_id) VALUES (?, ?)",
			id, childID); err != nil {
			return 0, fmt.Errorf("insert correlation link: %w", err)
		}
	}

	return id, nil
}

// nullFloat converts a raw attribute to a nullable REAL bind value.
func nullFloat(s string) interface{} {
	v := ParseNumeric(s)
	if v == nil {
		return nil
	}
	return *v
}

// attrsJSON serializes the full attribute map for tables that keep an
// extra_json column.
func attrsJSON(e *models.Entry) string {
	data, err := json.Marshal(e.Attrs)
	if err != nil {
		return "{}"
	}
	return string(data)
}
