// ABOUTME: Workout route importer: GPX files into workout_routes and route points.
// ABOUTME: Skip-existing by unique file_path; force mode deletes and re-imports.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/healthdb/internal/gpx"
	"github.com/harperreed/healthdb/internal/models"
)

// RouteImportStats counts the outcome of one route import pass. Reasons holds
// one line per skipped-for-cause file for the run summary.
type RouteImportStats struct {
	Imported        int      `json:"imported"`
	SkippedExisting int      `json:"skipped_existing"`
	SkippedFiles    int      `json:"skipped_files"`
	Reasons         []string `json:"-"`
}

// ImportRoutes scans dir for GPX files and imports each one. Files already
// present by file_path are skipped before any parsing unless force is set, in
// which case their rows are deleted and rebuilt. Parsing runs on a bounded
// worker pool; inserts serialize through the store mutex, so the result is
// independent of file processing order. A missing directory imports nothing.
func (d *DB) ImportRoutes(ctx context.Context, dir string, force bool, jobs int) (*RouteImportStats, error) {
	stats := &RouteImportStats{}

	files, err := listFiles(dir, ".gpx")
	if err != nil || len(files) == 0 {
		return stats, err
	}

	existing, err := d.importedPaths("workout_routes")
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
			route, err := gpx.ParseFile(path)
			if err != nil {
				d.mu.Lock()
				stats.SkippedFiles++
				stats.Reasons = append(stats.Reasons, fmt.Sprintf("%s: %v", path, err))
				d.mu.Unlock()
				return nil
			}
			if len(route.Points) == 0 {
				d.mu.Lock()
				stats.SkippedFiles++
				stats.Reasons = append(stats.Reasons, fmt.Sprintf("%s: no trackpoints", path))
				d.mu.Unlock()
				return nil
			}
			if err := d.insertRoute(route, force); err != nil {
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
		"CREATE INDEX IF NOT EXISTS idx_workout_route_points_route ON workout_route_points(route_id)"); err != nil {
		return nil, fmt.Errorf("create route point index: %w", err)
	}
	if _, err := d.db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_workout_routes_start_time ON workout_routes(start_time)"); err != nil {
		return nil, fmt.Errorf("create route index: %w", err)
	}
	return stats, nil
}

// insertRoute writes one route and its points in a single transaction,
// serialized against other writers.
func (d *DB) insertRoute(route *models.Route, force bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin route insert: %w", err)
	}
	defer tx.Rollback()

	if force {
		if _, err := tx.Exec(`
			DELETE FROM workout_route_points WHERE route_id IN
			  (SELECT id FROM workout_routes WHERE file_path = ?)`,
			route.FilePath); err != nil {
			return fmt.Errorf("delete route points: %w", err)
		}
		if _, err := tx.Exec(
			"DELETE FROM workout_routes WHERE file_path = ?", route.FilePath); err != nil {
			return fmt.Errorf("delete route: %w", err)
		}
	}

	res, err := tx.Exec(`
		INSERT INTO workout_routes (file_path, start_time, end_time, point_count,
		  distance_km, min_lat, max_lat, min_lon, max_lon)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		route.FilePath, route.StartTime, route.EndTime, len(route.Points),
		route.DistanceKm, ptr(route.MinLat), ptr(route.MaxLat),
		ptr(route.MinLon), ptr(route.MaxLon))
	if err != nil {
		return fmt.Errorf("insert route %s: %w", route.FilePath, err)
	}
	routeID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("route id: %w", err)
	}

	for i, pt := range route.Points {
		if _, err := tx.Exec(`
			INSERT INTO workout_route_points (route_id, point_index, lat, lon, ele, time)
			VALUES (?, ?, ?, ?, ?, ?)`,
			routeID, i, ptr(pt.Lat), ptr(pt.Lon), ptr(pt.Ele), pt.Time); err != nil {
			return fmt.Errorf("insert route point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit route: %w", err)
	}
	return nil
}

// importedPaths returns the set of file_path values already in table.
func (d *DB) importedPaths(table string) (map[string]bool, error) {
	rows, err := d.db.Query("SELECT file_path FROM " + table)
	if err != nil {
		return nil, fmt.Errorf("list imported paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]bool)
	for rows.Next() {
		var p sql.NullString
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan imported path: %w", err)
		}
		if p.Valid {
			paths[p.String] = true
		}
	}
	return paths, rows.Err()
}

// listFiles returns dir entries with the given extension, sorted by
// os.ReadDir. A missing directory yields nil without error.
func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// ptr unwraps a nullable float for binding.
func ptr(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
