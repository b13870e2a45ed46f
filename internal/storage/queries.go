// ABOUTME: Read queries over the normalized store for the MCP surface and tests.
// ABOUTME: All functions are pure reads against records_norm, workouts_norm, routes, ECGs.
package storage

import (
	"database/sql"
	"fmt"
)

// NormRecord is one row of records_norm.
type NormRecord struct {
	ID             int64    `json:"id"`
	Type           string   `json:"type"`
	SourceName     string   `json:"source_name"`
	SourceNameNorm string   `json:"source_name_norm"`
	Unit           string   `json:"unit,omitempty"`
	Value          string   `json:"value"`
	ValueNum       *float64 `json:"value_num,omitempty"`
	StartDT        string   `json:"start_dt"`
	EndDT          string   `json:"end_dt"`
}

// NormWorkout is one row of workouts_norm.
type NormWorkout struct {
	ID             int64    `json:"id"`
	ActivityType   string   `json:"workout_activity_type"`
	DurationMin    *float64 `json:"duration_min,omitempty"`
	DistanceKm     *float64 `json:"total_distance_km,omitempty"`
	EnergyKcal     *float64 `json:"total_energy_kcal,omitempty"`
	SourceNameNorm string   `json:"source_name_norm"`
	StartDT        string   `json:"start_dt"`
	EndDT          string   `json:"end_dt"`
}

// RouteSummary is one row of workout_routes without its points.
type RouteSummary struct {
	ID         int64   `json:"id"`
	FilePath   string  `json:"file_path"`
	StartTime  string  `json:"start_time"`
	DistanceKm float64 `json:"distance_km"`
	PointCount int     `json:"point_count"`
}

// ECGSummary is one row of ecg_records without its samples.
type ECGSummary struct {
	ID             int64    `json:"id"`
	FilePath       string   `json:"file_path"`
	RecordedDate   string   `json:"recorded_date"`
	Classification string   `json:"classification"`
	Symptoms       string   `json:"symptoms,omitempty"`
	SampleRateHz   *float64 `json:"sample_rate_hz,omitempty"`
	SampleCount    int      `json:"sample_count"`
}

// QueryRecords returns normalized records, newest first, optionally filtered
// by type and by start_dt bounds (inclusive, "2006-01-02 15:04:05" prefixes).
func (d *DB) QueryRecords(recordType, since, until string, limit int) ([]NormRecord, error) {
	query := "SELECT id, type, source_name, source_name_norm, unit, value, value_num, start_dt, end_dt FROM records_norm WHERE 1=1"
	var args []interface{}
	if recordType != "" {
		query += " AND type = ?"
		args = append(args, recordType)
	}
	if since != "" {
		query += " AND start_dt >= ?"
		args = append(args, since)
	}
	if until != "" {
		query += " AND start_dt <= ?"
		args = append(args, until)
	}
	query += " ORDER BY start_dt DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []NormRecord
	for rows.Next() {
		var r NormRecord
		var unit, value sql.NullString
		var num sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Type, &r.SourceName, &r.SourceNameNorm,
			&unit, &value, &num, &r.StartDT, &r.EndDT); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Unit, r.Value = unit.String, value.String
		if num.Valid {
			v := num.Float64
			r.ValueNum = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// QueryWorkouts returns normalized workouts, newest first, optionally
// filtered by activity type.
func (d *DB) QueryWorkouts(activityType string, limit int) ([]NormWorkout, error) {
	query := "SELECT id, workout_activity_type, duration_min, total_distance_km, total_energy_kcal, source_name_norm, start_dt, end_dt FROM workouts_norm"
	var args []interface{}
	if activityType != "" {
		query += " WHERE workout_activity_type = ?"
		args = append(args, activityType)
	}
	query += " ORDER BY start_dt DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer rows.Close()

	var out []NormWorkout
	for rows.Next() {
		var w NormWorkout
		var dur, dist, energy sql.NullFloat64
		var norm sql.NullString
		if err := rows.Scan(&w.ID, &w.ActivityType, &dur, &dist, &energy,
			&norm, &w.StartDT, &w.EndDT); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		w.SourceNameNorm = norm.String
		if dur.Valid {
			v := dur.Float64
			w.DurationMin = &v
		}
		if dist.Valid {
			v := dist.Float64
			w.DistanceKm = &v
		}
		if energy.Valid {
			v := energy.Float64
			w.EnergyKcal = &v
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ListRoutes returns imported routes, newest first.
func (d *DB) ListRoutes(limit int) ([]RouteSummary, error) {
	query := "SELECT id, file_path, start_time, distance_km, point_count FROM workout_routes ORDER BY start_time DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var out []RouteSummary
	for rows.Next() {
		var r RouteSummary
		var start sql.NullString
		var dist sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.FilePath, &start, &dist, &r.PointCount); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		r.StartTime, r.DistanceKm = start.String, dist.Float64
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListECGs returns imported ECG recordings, newest first.
func (d *DB) ListECGs(limit int) ([]ECGSummary, error) {
	query := "SELECT id, file_path, recorded_date, classification, symptoms, sample_rate_hz, sample_count FROM ecg_records ORDER BY recorded_date DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ecgs: %w", err)
	}
	defer rows.Close()

	var out []ECGSummary
	for rows.Next() {
		var e ECGSummary
		var recorded, class, symptoms sql.NullString
		var rate sql.NullFloat64
		var count sql.NullInt64
		if err := rows.Scan(&e.ID, &e.FilePath, &recorded, &class, &symptoms, &rate, &count); err != nil {
			return nil, fmt.Errorf("scan ecg: %w", err)
		}
		e.RecordedDate, e.Classification, e.Symptoms = recorded.String, class.String, symptoms.String
		if rate.Valid {
			v := rate.Float64
			e.SampleRateHz = &v
		}
		e.SampleCount = int(count.Int64)
		out = append(out, e)
	}
	return out, rows.Err()
}
