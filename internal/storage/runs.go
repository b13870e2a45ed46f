// ABOUTME: Ingest run audit records.
// ABOUTME: One row per ingest invocation with counts, keyed by UUID.
package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IngestRun identifies one ingest invocation for the audit trail.
type IngestRun struct {
	ID         uuid.UUID
	ExportPath string
	StartedAt  time.Time
}

// NewIngestRun starts an audit record for an ingest of exportPath.
func NewIngestRun(exportPath string) *IngestRun {
	return &IngestRun{
		ID:         uuid.New(),
		ExportPath: exportPath,
		StartedAt:  time.Now().UTC(),
	}
}

// RecordRun persists the finished run with its final counts.
func (d *DB) RecordRun(run *IngestRun, stats IngestStats) error {
	_, err := d.db.Exec(`
		INSERT INTO ingest_runs (id, export_path, started_at, finished_at, entries, skipped)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.ExportPath,
		run.StartedAt.Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		stats.Total(), stats.SkippedElements)
	if err != nil {
		return fmt.Errorf("record ingest run: %w", err)
	}
	return nil
}
