// ABOUTME: Tests for the MCP tool handlers against a real temp store.
// ABOUTME: Calls handlers directly; transport wiring is left to the SDK.
package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harperreed/healthdb/internal/config"
	"github.com/harperreed/healthdb/internal/models"
	"github.com/harperreed/healthdb/internal/storage"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "health.sqlite"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	w, err := db.NewRawWriter(storage.DefaultBatchSize, false)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	entries := []*models.Entry{
		{Kind: models.KindRecord, Attrs: map[string]string{
			"type": "HKQuantityTypeIdentifierHeartRate", "value": "62", "unit": "count/min",
			"sourceName": "Watch",
			"startDate":  "2024-12-13 09:00:00 -0600", "endDate": "2024-12-13 09:00:00 -0600",
		}},
		{Kind: models.KindWorkout, Attrs: map[string]string{
			"workoutActivityType": "HKWorkoutActivityTypeRunning",
			"duration":            "30", "durationUnit": "min",
			"startDate": "2024-12-13 08:00:00 -0600", "endDate": "2024-12-13 08:30:00 -0600",
		}},
	}
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatalf("failed to write entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	cfg := config.Default()
	if _, err := db.Normalize(storage.Normalizer{
		Alias:         cfg.AliasFunc(),
		DurationUnits: cfg.DurationUnits,
		DistanceUnits: cfg.DistanceUnits,
		EnergyUnits:   cfg.EnergyUnits,
	}); err != nil {
		t.Fatalf("failed to normalize: %v", err)
	}
	srv, err := NewServer(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func TestHandleInventory(t *testing.T) {
	s := setupServer(t)
	_, out, err := s.handleInventory(context.Background(), nil, emptyInput{})
	if err != nil {
		t.Fatalf("handleInventory failed: %v", err)
	}
	inv, ok := out.(*storage.Inventory)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if inv.Totals["records"] != 1 || inv.Totals["workouts"] != 1 {
		t.Errorf("totals = %v", inv.Totals)
	}
}

func TestHandleQueryRecords(t *testing.T) {
	s := setupServer(t)
	_, out, err := s.handleQueryRecords(context.Background(), nil, queryRecordsInput{
		Type: "HKQuantityTypeIdentifierHeartRate",
	})
	if err != nil {
		t.Fatalf("handleQueryRecords failed: %v", err)
	}
	records, ok := out.([]storage.NormRecord)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if len(records) != 1 || records[0].Value != "62" {
		t.Errorf("records = %+v", records)
	}
}

func TestHandleQueryRecordsNoMatch(t *testing.T) {
	s := setupServer(t)
	_, out, err := s.handleQueryRecords(context.Background(), nil, queryRecordsInput{
		Type: "HKQuantityTypeIdentifierStepCount",
	})
	if err != nil {
		t.Fatalf("handleQueryRecords failed: %v", err)
	}
	msg, ok := out.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if msg["message"] != "No records found." {
		t.Errorf("message = %v", msg["message"])
	}
}

func TestHandleQueryWorkouts(t *testing.T) {
	s := setupServer(t)
	_, out, err := s.handleQueryWorkouts(context.Background(), nil, queryWorkoutsInput{})
	if err != nil {
		t.Fatalf("handleQueryWorkouts failed: %v", err)
	}
	workouts, ok := out.([]storage.NormWorkout)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if len(workouts) != 1 || workouts[0].ActivityType != "HKWorkoutActivityTypeRunning" {
		t.Errorf("workouts = %+v", workouts)
	}
}

func TestHandleListRoutesEmpty(t *testing.T) {
	s := setupServer(t)
	_, out, err := s.handleListRoutes(context.Background(), nil, listInput{})
	if err != nil {
		t.Fatalf("handleListRoutes failed: %v", err)
	}
	if _, ok := out.(map[string]interface{}); !ok {
		t.Errorf("expected empty-store message, got %T", out)
	}
}
