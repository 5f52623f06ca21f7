// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a write-only SQLite audit of each run: what was
// selected, what was published, and what failed. Nothing in the pipeline
// reads it back; the history command does.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/journal-club/pkg/types"
)

// Result statuses.
const (
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// ErrRunNotFound is returned when a run id is not in the archive.
var ErrRunNotFound = errors.New("run not found")

// Run is one batch execution.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	Category   string    `json:"category" yaml:"category"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero" yaml:"finished_at,omitempty"`
	Candidates int       `json:"candidates" yaml:"candidates"`
	Published  int       `json:"published" yaml:"published"`
	Failed     int       `json:"failed" yaml:"failed"`
	// Error holds the fatal error that aborted the run, if any.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result is the outcome for one candidate of a run.
type Result struct {
	Position   int                        `json:"position" yaml:"position"`
	Paper      types.InterestingPaper     `json:"paper" yaml:"paper"`
	Status     string                     `json:"status" yaml:"status"`
	Stage      string                     `json:"stage,omitempty" yaml:"stage,omitempty"`
	Error      string                     `json:"error,omitempty" yaml:"error,omitempty"`
	Discussion *types.BilingualDiscussion `json:"discussion,omitempty" yaml:"discussion,omitempty"`
	RecordedAt time.Time                  `json:"recorded_at" yaml:"recorded_at"`
}

// Store manages the archive database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the archive database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			category    TEXT NOT NULL,
			started_at  TEXT NOT NULL,
			finished_at TEXT NOT NULL DEFAULT '',
			candidates  INTEGER NOT NULL DEFAULT 0,
			published   INTEGER NOT NULL DEFAULT 0,
			failed      INTEGER NOT NULL DEFAULT 0,
			error       TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position    INTEGER NOT NULL,
			paper_id    TEXT NOT NULL,
			paper       TEXT NOT NULL,
			status      TEXT NOT NULL,
			stage       TEXT NOT NULL DEFAULT '',
			error       TEXT NOT NULL DEFAULT '',
			discussion  TEXT NOT NULL DEFAULT '',
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_paper_id ON results(paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a new run row.
func (s *Store) BeginRun(ctx context.Context, id, category string, candidates int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, category, started_at, candidates) VALUES (?, ?, ?, ?)`,
		id, category, formatTime(s.now()), candidates,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", id, err)
	}
	return nil
}

// Record stores the result for the candidate at position.
func (s *Store) Record(ctx context.Context, runID string, position int, r types.RunResult) error {
	paperJSON, err := json.Marshal(r.Paper)
	if err != nil {
		return fmt.Errorf("marshaling paper: %w", err)
	}

	status, stage, message := StatusPublished, "", ""
	if r.Err != nil {
		status, stage, message = StatusFailed, r.Err.Stage, r.Err.Message
	}

	discussion := ""
	if r.Discussion != nil {
		data, err := json.Marshal(r.Discussion)
		if err != nil {
			return fmt.Errorf("marshaling discussion: %w", err)
		}
		discussion = string(data)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO results (run_id, position, paper_id, paper, status, stage, error, discussion, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, position, r.Paper.ID, string(paperJSON), status, stage, message, discussion, formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("recording %s in run %s: %w", r.Paper.ID, runID, err)
	}
	return nil
}

// FinishRun stamps the end of a run with its counts. runErr is the fatal
// error that aborted it, or nil.
func (s *Store) FinishRun(ctx context.Context, id string, published, failed int, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, published = ?, failed = ?, error = ? WHERE id = ?`,
		formatTime(s.now()), published, failed, msg, id,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, category, started_at, finished_at, candidates, published, failed, error
	      FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns one run by id.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category, started_at, finished_at, candidates, published, failed, error
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// Results returns the results of a run in candidate order.
func (s *Store) Results(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, paper, status, stage, error, discussion, recorded_at
		 FROM results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r                          Result
			paperJSON, discussion, rec string
		)
		if err := rows.Scan(&r.Position, &paperJSON, &r.Status, &r.Stage, &r.Error, &discussion, &rec); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if err := json.Unmarshal([]byte(paperJSON), &r.Paper); err != nil {
			return nil, fmt.Errorf("decoding paper at position %d: %w", r.Position, err)
		}
		if discussion != "" {
			r.Discussion = &types.BilingualDiscussion{}
			if err := json.Unmarshal([]byte(discussion), r.Discussion); err != nil {
				return nil, fmt.Errorf("decoding discussion at position %d: %w", r.Position, err)
			}
		}
		r.RecordedAt = parseTime(rec)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Recorder binds the store to one run id.
func (s *Store) Recorder(runID string) *Recorder {
	return &Recorder{store: s, runID: runID}
}

// Recorder records results for a single run.
type Recorder struct {
	store *Store
	runID string
}

// Record stores result at position.
func (r *Recorder) Record(ctx context.Context, position int, result types.RunResult) error {
	return r.store.Record(ctx, r.runID, position, result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                 Run
		started, finished string
	)
	if err := sc.Scan(&r.ID, &r.Category, &started, &finished, &r.Candidates, &r.Published, &r.Failed, &r.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return r, nil
}

// timeLayout keeps a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
