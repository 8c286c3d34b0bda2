// Package history persists supervised runs and auto-push outcomes in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	command    TEXT NOT NULL,
	pid        INTEGER NOT NULL,
	started_at INTEGER NOT NULL,
	ended_at   INTEGER,
	exit_code  INTEGER
);
CREATE TABLE IF NOT EXISTS pushes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	at         INTEGER NOT NULL,
	committed  INTEGER NOT NULL,
	success    INTEGER NOT NULL,
	detail     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS pushes_at ON pushes(at);
`

// RunRecord is one supervised process launch.
type RunRecord struct {
	ID        string
	Command   string
	PID       int
	StartedAt time.Time
	EndedAt   *time.Time
	ExitCode  *int
}

// PushRecord is one auto-push cycle.
type PushRecord struct {
	ID        int64
	At        time.Time
	Committed bool
	Success   bool
	Detail    string
}

// Store is a SQLite-backed history. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" keeps everything in
// memory.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create history dir: %w", err)
			}
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a started run. Recording a run that already finished
// keeps its end time and exit code.
func (s *Store) RecordRun(ctx context.Context, r RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, command, pid, started_at) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET command = excluded.command, pid = excluded.pid, started_at = excluded.started_at`,
		r.ID, r.Command, r.PID, r.StartedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// FinishRun stores the end time and exit code of r, inserting the run when it
// was not recorded yet.
func (s *Store) FinishRun(ctx context.Context, r RunRecord) error {
	ended := time.Now()
	if r.EndedAt != nil {
		ended = *r.EndedAt
	}
	var code sql.NullInt64
	if r.ExitCode != nil {
		code = sql.NullInt64{Int64: int64(*r.ExitCode), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, command, pid, started_at, ended_at, exit_code) VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET ended_at = excluded.ended_at, exit_code = excluded.exit_code`,
		r.ID, r.Command, r.PID, r.StartedAt.UnixMilli(), ended.UnixMilli(), code)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordPush appends a push outcome and returns its ID.
func (s *Store) RecordPush(ctx context.Context, p PushRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO pushes (at, committed, success, detail) VALUES (?, ?, ?, ?)",
		p.At.UnixMilli(), p.Committed, p.Success, p.Detail)
	if err != nil {
		return 0, fmt.Errorf("record push: %w", err)
	}
	return res.LastInsertId()
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, command, pid, started_at, ended_at, exit_code FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			r       RunRecord
			started int64
			ended   sql.NullInt64
			code    sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Command, &r.PID, &started, &ended, &code); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		if ended.Valid {
			t := time.UnixMilli(ended.Int64)
			r.EndedAt = &t
		}
		if code.Valid {
			c := int(code.Int64)
			r.ExitCode = &c
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentPushes returns up to limit push outcomes, newest first.
func (s *Store) RecentPushes(ctx context.Context, limit int) ([]PushRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, at, committed, success, detail FROM pushes ORDER BY at DESC, id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("query pushes: %w", err)
	}
	defer rows.Close()

	var out []PushRecord
	for rows.Next() {
		var (
			p  PushRecord
			at int64
		)
		if err := rows.Scan(&p.ID, &at, &p.Committed, &p.Success, &p.Detail); err != nil {
			return nil, fmt.Errorf("scan push: %w", err)
		}
		p.At = time.UnixMilli(at)
		out = append(out, p)
	}
	return out, rows.Err()
}
