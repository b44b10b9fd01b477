package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	StatusSucceeded = "succeeded"
	StatusPartial   = "partial"
	StatusAborted   = "aborted"
	StatusFailed    = "failed"
	StatusDryRun    = "dry-run"
)

var ErrRunNotFound = errors.New("sync run not found")

// SQLiteStore is the local journal of sync runs and their per-item outcomes.
type SQLiteStore struct {
	db *sql.DB
}

// Run is one journaled sync invocation.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	WindowStart   string
	WindowEnd     string
	Source        string
	DryRun        bool
	Status        string
	SourceCount   int
	Skipped       int
	Deleted       int
	DeleteFailed  int
	Published     int
	PublishFailed int
	Legacy        int
	Error         string
}

// Item is one delete or publish outcome of a run.
type Item struct {
	RunID   string
	Seq     int
	Action  string
	Ref     string
	Comment string
	OK      bool
	Error   string
}

// NewRun returns a run with a fresh id.
func NewRun(startedAt time.Time) Run {
	return Run{ID: uuid.NewString(), StartedAt: startedAt}
}

// DefaultPath returns ~/.togglepace/journal.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".togglepace", "journal.db"), nil
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	window_start TEXT NOT NULL,
	window_end TEXT NOT NULL,
	source TEXT NOT NULL,
	dry_run INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	source_count INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	deleted INTEGER NOT NULL DEFAULT 0,
	delete_failed INTEGER NOT NULL DEFAULT 0,
	published INTEGER NOT NULL DEFAULT 0,
	publish_failed INTEGER NOT NULL DEFAULT 0,
	legacy INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS sync_items (
	run_id TEXT NOT NULL REFERENCES sync_runs(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	action TEXT NOT NULL,
	ref TEXT NOT NULL DEFAULT '',
	comment TEXT NOT NULL DEFAULT '',
	ok INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs(started_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// RecordRun stores a run and its items in one transaction.
func (s *SQLiteStore) RecordRun(run Run, items []Item) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	const insertRun = `
INSERT INTO sync_runs (
	id,
	started_at,
	finished_at,
	window_start,
	window_end,
	source,
	dry_run,
	status,
	source_count,
	skipped,
	deleted,
	delete_failed,
	published,
	publish_failed,
	legacy,
	error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	if _, err := tx.Exec(
		insertRun,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.WindowStart,
		run.WindowEnd,
		run.Source,
		boolToInt(run.DryRun),
		run.Status,
		run.SourceCount,
		run.Skipped,
		run.Deleted,
		run.DeleteFailed,
		run.Published,
		run.PublishFailed,
		run.Legacy,
		run.Error,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert sync run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO sync_items (run_id, seq, action, ref, comment, ok, error) VALUES (?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.Exec(run.ID, i+1, item.Action, item.Ref, item.Comment, boolToInt(item.OK), item.Error); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert sync item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListRuns returns the newest runs first. A limit <= 0 returns every run.
func (s *SQLiteStore) ListRuns(limit int) ([]Run, error) {
	query := runSelect + ` ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sync runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, 16)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync runs: %w", err)
	}
	return runs, nil
}

// GetRun finds a run by full id or unique id prefix.
func (s *SQLiteStore) GetRun(idOrPrefix string) (Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return Run{}, errors.New("run id is required")
	}

	rows, err := s.db.Query(runSelect+` WHERE id LIKE ? ORDER BY started_at DESC LIMIT 2`, idOrPrefix+"%")
	if err != nil {
		return Run{}, fmt.Errorf("query sync run: %w", err)
	}
	defer rows.Close()

	matches := make([]Run, 0, 2)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterate sync run: %w", err)
	}

	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run id prefix %q is ambiguous", idOrPrefix)
	}
}

func (s *SQLiteStore) ListItems(runID string) ([]Item, error) {
	rows, err := s.db.Query(`
SELECT run_id, seq, action, ref, comment, ok, error
FROM sync_items
WHERE run_id = ?
ORDER BY seq;`, runID)
	if err != nil {
		return nil, fmt.Errorf("query sync items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0, 16)
	for rows.Next() {
		var (
			item Item
			ok   int
		)
		if err := rows.Scan(&item.RunID, &item.Seq, &item.Action, &item.Ref, &item.Comment, &ok, &item.Error); err != nil {
			return nil, fmt.Errorf("scan sync item: %w", err)
		}
		item.OK = ok != 0
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync items: %w", err)
	}
	return items, nil
}

// DeleteRunsBefore removes runs started before cutoff together with their items.
func (s *SQLiteStore) DeleteRunsBefore(cutoff time.Time) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	stamp := cutoff.UTC().Format(time.RFC3339)
	if _, err := tx.Exec(`DELETE FROM sync_items WHERE run_id IN (SELECT id FROM sync_runs WHERE started_at < ?);`, stamp); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete sync items: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM sync_runs WHERE started_at < ?;`, stamp)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete sync runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	return deleted, nil
}

const runSelect = `
SELECT
	id,
	started_at,
	finished_at,
	window_start,
	window_end,
	source,
	dry_run,
	status,
	source_count,
	skipped,
	deleted,
	delete_failed,
	published,
	publish_failed,
	legacy,
	error
FROM sync_runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw string
		dryRun      int
	)
	if err := row.Scan(
		&run.ID,
		&startedRaw,
		&finishedRaw,
		&run.WindowStart,
		&run.WindowEnd,
		&run.Source,
		&dryRun,
		&run.Status,
		&run.SourceCount,
		&run.Skipped,
		&run.Deleted,
		&run.DeleteFailed,
		&run.Published,
		&run.PublishFailed,
		&run.Legacy,
		&run.Error,
	); err != nil {
		return Run{}, fmt.Errorf("scan sync run: %w", err)
	}
	run.DryRun = dryRun != 0

	var err error
	run.StartedAt, err = time.Parse(time.RFC3339, startedRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at %q: %w", startedRaw, err)
	}
	run.FinishedAt, err = time.Parse(time.RFC3339, finishedRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse finished_at %q: %w", finishedRaw, err)
	}
	return run, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
