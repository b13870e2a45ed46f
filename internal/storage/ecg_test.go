// ABOUTME: Tests for the ECG CSV importer.
// ABOUTME: Covers fresh import, skip-existing, force, and headerless files.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const ecgCSV = `Name,John Doe
Date of Birth,1980-01-01
Recorded Date,2024-12-13 09:15:00 -0600
Classification,Sinus Rhythm
Symptoms,None
Software Version,2.0
Device,"Watch7,1"
Sample Rate,512 hertz
Lead,Lead I
Unit,µV

-12.5
3.0
18.25
`

func writeECGFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestImportECGs(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeECGFile(t, dir, "ecg_2024-12-13.csv", ecgCSV)

	stats, err := db.ImportECGs(context.Background(), dir, false, 2)
	if err != nil {
		t.Fatalf("ImportECGs failed: %v", err)
	}
	if stats.Imported != 1 || stats.SkippedExisting != 0 || stats.SkippedFiles != 0 {
		t.Errorf("stats = %+v", stats)
	}

	ecgs, err := db.ListECGs(0)
	if err != nil {
		t.Fatalf("ListECGs failed: %v", err)
	}
	if len(ecgs) != 1 {
		t.Fatalf("got %d ecg rows", len(ecgs))
	}
	e := ecgs[0]
	if e.Classification != "Sinus Rhythm" {
		t.Errorf("classification = %q", e.Classification)
	}
	if e.SampleRateHz == nil || *e.SampleRateHz != 512 {
		t.Errorf("sample_rate_hz = %v, want 512", e.SampleRateHz)
	}
	if e.SampleCount != 3 {
		t.Errorf("sample_count = %d, want 3", e.SampleCount)
	}
	if got := countRows(t, db, "ecg_samples"); got != 3 {
		t.Errorf("sample rows = %d, want 3", got)
	}
}

func TestImportECGsSkipsExisting(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeECGFile(t, dir, "a.csv", ecgCSV)

	if _, err := db.ImportECGs(context.Background(), dir, false, 2); err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	writeECGFile(t, dir, "b.csv", ecgCSV)

	stats, err := db.ImportECGs(context.Background(), dir, false, 2)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if stats.Imported != 1 || stats.SkippedExisting != 1 {
		t.Errorf("stats = %+v, want one imported and one skipped", stats)
	}
	if got := countRows(t, db, "ecg_records"); got != 2 {
		t.Errorf("ecg rows = %d, want 2", got)
	}
}

func TestImportECGsForce(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeECGFile(t, dir, "a.csv", ecgCSV)

	for i := 0; i < 2; i++ {
		if _, err := db.ImportECGs(context.Background(), dir, true, 2); err != nil {
			t.Fatalf("import %d failed: %v", i, err)
		}
	}
	if got := countRows(t, db, "ecg_records"); got != 1 {
		t.Errorf("ecg rows = %d, want 1 after force re-import", got)
	}
	if got := countRows(t, db, "ecg_samples"); got != 3 {
		t.Errorf("sample rows = %d, want 3 after force re-import", got)
	}
}

func TestImportECGsSkipsHeaderless(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeECGFile(t, dir, "empty.csv", "Name,John Doe\n")
	writeECGFile(t, dir, "good.csv", ecgCSV)

	stats, err := db.ImportECGs(context.Background(), dir, false, 2)
	if err != nil {
		t.Fatalf("ImportECGs failed: %v", err)
	}
	if stats.Imported != 1 {
		t.Errorf("imported = %d, want 1", stats.Imported)
	}
	if stats.SkippedFiles != 1 || len(stats.Reasons) != 1 {
		t.Errorf("skipped = %d, reasons = %v", stats.SkippedFiles, stats.Reasons)
	}
}
