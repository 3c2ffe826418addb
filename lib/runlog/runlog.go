// Package runlog records pipeline stage executions in a sqlite ledger.
// The ledger is observational: pipeline behavior never branches on it, it
// exists so out-of-order and concurrent runs can be audited after the
// fact (cache filenames alone don't say which run produced them).
package runlog

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

type StageRun struct {
	Id         int64
	RunId      string
	Stage      string
	Status     string
	CachePath  string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return NewStore(db)
}

func NewStore(db *sql.DB) (*Store, error) {
	_, err := db.Exec(Schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// StageStarted inserts a running row and returns its id for the matching
// StageFinished call.
func (s *Store) StageStarted(ctx context.Context, runId, stage string) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO stage_runs (run_id, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		runId, stage, StatusRunning, time.Now().Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) StageFinished(ctx context.Context, id int64, status, cachePath, errMsg string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE stage_runs SET status = ?, cache_path = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, cachePath, errMsg, time.Now().Unix(), id,
	)
	return err
}

// Runs lists every recorded run id, oldest first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id FROM stage_runs GROUP BY run_id ORDER BY MIN(id)`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// RunHistory returns the recorded stages of a run in execution order.
func (s *Store) RunHistory(ctx context.Context, runId string) ([]StageRun, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, stage, status, cache_path, error, started_at, COALESCE(finished_at, 0)
		 FROM stage_runs WHERE run_id = ? ORDER BY id`,
		runId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StageRun
	for rows.Next() {
		var r StageRun
		var started, finished int64
		err := rows.Scan(&r.Id, &r.RunId, &r.Stage, &r.Status, &r.CachePath, &r.Error, &started, &finished)
		if err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(started, 0)
		if finished != 0 {
			r.FinishedAt = time.Unix(finished, 0)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
