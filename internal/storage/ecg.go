// ABOUTME: ECG importer: electrocardiogram CSV exports into ecg_records and samples.
// ABOUTME: Shares the skip-existing/force policy with the route importer.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/healthdb/internal/ecg"
	"github.com/harperreed/healthdb/internal/models"
)

// ECGImportStats counts the outcome of one ECG import pass.
type ECGImportStats struct {
	Imported        int      `json:"imported"`
	SkippedExisting int      `json:"skipped_existing"`
	SkippedFiles    int      `json:"skipped_files"`
	Reasons         []string `json:"-"`
}

// ImportECGs scans dir for CSV exports and imports each one, keyed by unique
// file_path. Headerless or sampleless files are skipped with a reason, never
// fatally. Parallel parse, serialized writes, order-insensitive result.
func (d *DB) ImportECGs(ctx context.Context, dir string, force bool, jobs int) (*ECGImportStats, error) {
	stats := &ECGImportStats{}

	files, err := listFiles(dir, ".csv")
	if err != nil || len(files) == 0 {
		return stats, err
	}

	existing, err := d.importedPaths("ecg_records")
	if err != nil {
		return nil, err
	}

	if jobs <= 0 {
		jobs = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, path := range files {
		if !force && existing[path] {
			stats.SkippedExisting++
			continue
		}
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := ecg.ParseFile(path)
			if err != nil {
				d.mu.Lock()
				stats.SkippedFiles++
				stats.Reasons = append(stats.Reasons, fmt.Sprintf("%s: %v", path, err))
				d.mu.Unlock()
				return nil
			}
			if len(rec.Samples) == 0 {
				d.mu.Lock()
				stats.SkippedFiles++
				stats.Reasons = append(stats.Reasons, fmt.Sprintf("%s: no voltage samples", path))
				d.mu.Unlock()
				return nil
			}
			if err := d.insertECG(rec, force); err != nil {
				return err
			}
			d.mu.Lock()
			stats.Imported++
			d.mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if _, err := d.db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_ecg_samples_ecg ON ecg_samples(ecg_id)"); err != nil {
		return nil, fmt.Errorf("create ecg sample index: %w", err)
	}
	return stats, nil
}

// insertECG writes one recording and its samples in a single transaction.
func (d *DB) insertECG(rec *models.ECGRecording, force bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin ecg insert: %w", err)
	}
	defer tx.Rollback()

	if force {
		if _, err := tx.Exec(`
			DELETE FROM ecg_samples WHERE ecg_id IN
			  (SELECT id FROM ecg_records WHERE file_path = ?)`,
			rec.FilePath); err != nil {
			return fmt.Errorf("delete ecg samples: %w", err)
		}
		if _, err := tx.Exec(
			"DELETE FROM ecg_records WHERE file_path = ?", rec.FilePath); err != nil {
			return fmt.Errorf("delete ecg record: %w", err)
		}
	}

	extra, err := json.Marshal(rec.Extra)
	if err != nil {
		extra = []byte("{}")
	}

	res, err := tx.Exec(`
		INSERT INTO ecg_records (file_path, recorded_date, classification, symptoms,
		  sample_rate_hz, sample_count, lead, unit, device, software_version, extra_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FilePath, rec.RecordedDate, rec.Classification, rec.Symptoms,
		ptr(rec.SampleRateHz), len(rec.Samples), rec.Lead, rec.Unit,
		rec.Device, rec.SoftwareVersion, string(extra))
	if err != nil {
		return fmt.Errorf("insert ecg %s: %w", rec.FilePath, err)
	}
	ecgID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("ecg id: %w", err)
	}

	for i, v := range rec.Samples {
		if _, err := tx.Exec(
			"INSERT INTO ecg_samples (ecg_id, sample_index, value) VALUES (?, ?, ?)",
			ecgID, i, v); err != nil {
			return fmt.Errorf("insert ecg sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ecg: %w", err)
	}
	return nil
}
