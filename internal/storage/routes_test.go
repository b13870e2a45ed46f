// ABOUTME: Tests for the GPX route importer.
// ABOUTME: Covers fresh import, skip-existing, force re-import, and bad files.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const routeGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="Apple Health Export">
  <trk>
    <trkseg>
      <trkpt lat="41.8781" lon="-87.6298">
        <ele>180.5</ele>
        <time>2024-12-13T08:00:00Z</time>
      </trkpt>
      <trkpt lat="41.8830" lon="-87.6250">
        <ele>181.0</ele>
        <time>2024-12-13T08:05:00Z</time>
      </trkpt>
      <trkpt lat="41.8900" lon="-87.6200">
        <ele>182.0</ele>
        <time>2024-12-13T08:10:00Z</time>
      </trkpt>
    </trkseg>
  </trk>
</gpx>`

func writeRouteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestImportRoutes(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeRouteFile(t, dir, "route_2024-12-13_8.00am.gpx", routeGPX)

	stats, err := db.ImportRoutes(context.Background(), dir, false, 2)
	if err != nil {
		t.Fatalf("ImportRoutes failed: %v", err)
	}
	if stats.Imported != 1 || stats.SkippedExisting != 0 || stats.SkippedFiles != 0 {
		t.Errorf("stats = %+v", stats)
	}

	routes, err := db.ListRoutes(0)
	if err != nil {
		t.Fatalf("ListRoutes failed: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("got %d routes", len(routes))
	}
	r := routes[0]
	if r.PointCount != 3 {
		t.Errorf("point_count = %d, want 3", r.PointCount)
	}
	if r.DistanceKm < 1.5 || r.DistanceKm > 2.5 {
		t.Errorf("distance_km = %v, want roughly 1.9", r.DistanceKm)
	}
	if r.StartTime != "2024-12-13T08:00:00Z" {
		t.Errorf("start_time = %q", r.StartTime)
	}
	if got := countRows(t, db, "workout_route_points"); got != 3 {
		t.Errorf("route point rows = %d, want 3", got)
	}
}

func TestImportRoutesSkipsExisting(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeRouteFile(t, dir, "a.gpx", routeGPX)

	if _, err := db.ImportRoutes(context.Background(), dir, false, 2); err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	writeRouteFile(t, dir, "b.gpx", routeGPX)

	stats, err := db.ImportRoutes(context.Background(), dir, false, 2)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if stats.Imported != 1 {
		t.Errorf("imported = %d, want 1 (only the new file)", stats.Imported)
	}
	if stats.SkippedExisting != 1 {
		t.Errorf("skipped existing = %d, want 1", stats.SkippedExisting)
	}
	if got := countRows(t, db, "workout_routes"); got != 2 {
		t.Errorf("route rows = %d, want 2", got)
	}
}

func TestImportRoutesForce(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeRouteFile(t, dir, "a.gpx", routeGPX)

	for i := 0; i < 2; i++ {
		stats, err := db.ImportRoutes(context.Background(), dir, true, 2)
		if err != nil {
			t.Fatalf("import %d failed: %v", i, err)
		}
		if stats.Imported != 1 {
			t.Errorf("import %d: imported = %d, want 1", i, stats.Imported)
		}
	}
	if got := countRows(t, db, "workout_routes"); got != 1 {
		t.Errorf("route rows = %d, want 1 after force re-import", got)
	}
	if got := countRows(t, db, "workout_route_points"); got != 3 {
		t.Errorf("point rows = %d, want 3 after force re-import", got)
	}
}

func TestImportRoutesBadFile(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeRouteFile(t, dir, "good.gpx", routeGPX)
	writeRouteFile(t, dir, "bad.gpx", "<gpx><trk><trkseg>")
	writeRouteFile(t, dir, "notes.txt", "not a route")

	stats, err := db.ImportRoutes(context.Background(), dir, false, 2)
	if err != nil {
		t.Fatalf("ImportRoutes failed: %v", err)
	}
	if stats.Imported != 1 {
		t.Errorf("imported = %d, want 1", stats.Imported)
	}
	if stats.SkippedFiles != 1 || len(stats.Reasons) != 1 {
		t.Errorf("skipped files = %d, reasons = %v", stats.SkippedFiles, stats.Reasons)
	}
}

func TestImportRoutesMissingDir(t *testing.T) {
	db := setupTestDB(t)
	stats, err := db.ImportRoutes(context.Background(), filepath.Join(t.TempDir(), "nope"), false, 2)
	if err != nil {
		t.Fatalf("ImportRoutes failed: %v", err)
	}
	if stats.Imported != 0 || stats.SkippedFiles != 0 {
		t.Errorf("stats = %+v, want all zero", stats)
	}
}
