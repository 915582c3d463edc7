package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Runs table: one row per pipeline run, written after the run finishes.
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL,
    mode TEXT NOT NULL,               -- full, test, sample
    total_records INTEGER NOT NULL,
    previously_processed INTEGER NOT NULL,
    new_count INTEGER NOT NULL,
    failed_count INTEGER NOT NULL,
    report_rendered BOOLEAN NOT NULL DEFAULT 0,
    notified BOOLEAN NOT NULL DEFAULT 0,
    status TEXT NOT NULL              -- completed, aborted
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`
