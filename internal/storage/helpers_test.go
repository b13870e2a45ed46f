// ABOUTME: Shared test helpers for storage tests.
// ABOUTME: Provides setupTestDB, entry builders, and a small ingest shortcut.
package storage

import (
	"path/filepath"
	"testing"

	"github.com/harperreed/healthdb/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func recordEntry(typ, value, unit, source, start, end string) *models.Entry {
	return &models.Entry{
		Kind: models.KindRecord,
		Attrs: map[string]string{
			"type":       typ,
			"value":      value,
			"unit":       unit,
			"sourceName": source,
			"startDate":  start,
			"endDate":    end,
		},
	}
}

func workoutEntry(activity string, attrs map[string]string) *models.Entry {
	all := map[string]string{"workoutActivityType": activity}
	for k, v := range attrs {
		all[k] = v
	}
	return &models.Entry{Kind: models.KindWorkout, Attrs: all}
}

// ingestEntries writes entries through a fresh RawWriter, replacing the raw
// tables, and returns the final stats.
func ingestEntries(t *testing.T, db *DB, entries ...*models.Entry) IngestStats {
	t.Helper()
	w, err := db.NewRawWriter(DefaultBatchSize, false)
	if err != nil {
		t.Fatalf("NewRawWriter failed: %v", err)
	}
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return w.Stats()
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var n int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// defaultNormalizer mirrors the built-in config tables without importing the
// config package, keeping the alias function an injected fixture.
func defaultNormalizer() Normalizer {
	return Normalizer{
		Alias:         func(s string) string { return s },
		DurationUnits: map[string]float64{"min": 1, "sec": 1.0 / 60.0, "hr": 60},
		DistanceUnits: map[string]float64{"km": 1, "mi": 1.609344, "m": 0.001},
		EnergyUnits:   map[string]float64{"kcal": 1, "Cal": 1, "kJ": 1.0 / 4.184},
	}
}
