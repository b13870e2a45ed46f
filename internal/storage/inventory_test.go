// ABOUTME: Tests for the inventory report and ingest run audit rows.
// ABOUTME: Verifies table totals, per-type summaries, and run bookkeeping.
package storage

import (
	"testing"
)

func TestInventory(t *testing.T) {
	db := setupTestDB(t)
	ingestEntries(t, db,
		recordEntry("HKQuantityTypeIdentifierHeartRate", "60", "count/min", "Watch",
			"2024-12-13 09:00:00 -0600", "2024-12-13 09:00:00 -0600"),
		recordEntry("HKQuantityTypeIdentifierHeartRate", "72", "count/min", "Watch",
			"2024-12-14 09:00:00 -0600", "2024-12-14 09:00:00 -0600"),
		recordEntry("HKQuantityTypeIdentifierBodyMass", "82.5", "kg", "Scale",
			"2024-12-13 07:00:00 -0600", "2024-12-13 07:00:00 -0600"),
		workoutEntry("HKWorkoutActivityTypeRunning", map[string]string{
			"startDate": "2024-12-13 08:00:00 -0600", "endDate": "2024-12-13 08:30:00 -0600",
		}),
	)

	inv, err := db.Inventory()
	if err != nil {
		t.Fatalf("Inventory failed: %v", err)
	}
	if inv.Totals["records"] != 3 {
		t.Errorf("records total = %d, want 3", inv.Totals["records"])
	}
	if inv.Totals["workouts"] != 1 {
		t.Errorf("workouts total = %d, want 1", inv.Totals["workouts"])
	}
	if inv.Totals["ecg_records"] != 0 {
		t.Errorf("ecg total = %d, want 0", inv.Totals["ecg_records"])
	}

	hr, ok := inv.RecordTypes["HKQuantityTypeIdentifierHeartRate"]
	if !ok {
		t.Fatal("heart rate type missing from inventory")
	}
	if hr.Count != 2 {
		t.Errorf("heart rate count = %d, want 2", hr.Count)
	}
	if hr.Earliest != "2024-12-13 09:00:00 -0600" || hr.Latest != "2024-12-14 09:00:00 -0600" {
		t.Errorf("heart rate range = %s .. %s", hr.Earliest, hr.Latest)
	}
	if _, ok := inv.WorkoutTypes["HKWorkoutActivityTypeRunning"]; !ok {
		t.Error("running workout type missing from inventory")
	}
	if inv.GeneratedAt.IsZero() {
		t.Error("GeneratedAt is zero")
	}
}

func TestInventoryEmptyStore(t *testing.T) {
	db := setupTestDB(t)
	inv, err := db.Inventory()
	if err != nil {
		t.Fatalf("Inventory failed: %v", err)
	}
	if inv.Totals["records"] != 0 {
		t.Errorf("records total = %d, want 0", inv.Totals["records"])
	}
	if len(inv.RecordTypes) != 0 {
		t.Errorf("record types = %v, want none", inv.RecordTypes)
	}
}

func TestRecordRun(t *testing.T) {
	db := setupTestDB(t)
	run := NewIngestRun("/tmp/export.xml")
	stats := ingestEntries(t, db,
		recordEntry("HKQuantityTypeIdentifierHeartRate", "60", "count/min", "Watch",
			"2024-12-13 09:00:00 -0600", "2024-12-13 09:00:00 -0600"),
	)
	if err := db.RecordRun(run, stats); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	var path string
	var total int
	err := db.db.QueryRow("SELECT export_path, entries FROM ingest_runs WHERE id = ?",
		run.ID.String()).Scan(&path, &total)
	if err != nil {
		t.Fatalf("query run: %v", err)
	}
	if path != "/tmp/export.xml" {
		t.Errorf("export_path = %q", path)
	}
	if total != 1 {
		t.Errorf("entries = %d, want 1", total)
	}
}
