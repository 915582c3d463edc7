package db

import (
	"fmt"
	"time"
)

// Run is one recorded pipeline run.
type Run struct {
	RunID          int64
	StartedAt      time.Time
	FinishedAt     time.Time
	Mode           string
	TotalRecords   int
	Previous       int
	NewCount       int
	FailedCount    int
	ReportRendered bool
	Notified       bool
	Status         string
}

// InsertRun records a finished run and returns its ID.
func (db *DB) InsertRun(r Run) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO runs (started_at, finished_at, mode, total_records,
			previously_processed, new_count, failed_count,
			report_rendered, notified, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.StartedAt, r.FinishedAt, r.Mode, r.TotalRecords,
		r.Previous, r.NewCount, r.FailedCount,
		r.ReportRendered, r.Notified, r.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT run_id, started_at, finished_at, mode, total_records,
			previously_processed, new_count, failed_count,
			report_rendered, notified, status
		FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Mode,
			&r.TotalRecords, &r.Previous, &r.NewCount, &r.FailedCount,
			&r.ReportRendered, &r.Notified, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
