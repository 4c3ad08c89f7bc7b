package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"kiln/internal/config"
)

// Run is one persisted publish run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Published  int
	Failed     int
	Skipped    int
}

// TaskRow is one task outcome within a run.
type TaskRow struct {
	RunID        string
	Item         string
	Plugin       string
	Status       string
	Phase        string
	ErrorMessage string
	DurationMS   int64
}

// Store persists publish run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database in the state
// directory and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "publish_history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// SaveRun persists a run and its task rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, tasks []TaskRow) error {
	if run.ID == "" {
		return errors.New("run id is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO publish_runs (id, started_at, finished_at, published, failed, skipped)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Published,
		run.Failed,
		run.Skipped,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, task := range tasks {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO publish_tasks (run_id, item, plugin, status, phase, error_message, duration_ms)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			task.Item,
			task.Plugin,
			task.Status,
			nullableString(task.Phase),
			nullableString(task.ErrorMessage),
			task.DurationMS,
		)
		if err != nil {
			return fmt.Errorf("insert task row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, started_at, finished_at, published, failed, skipped
         FROM publish_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run         Run
			startedRaw  string
			finishedRaw string
		)
		if err := rows.Scan(&run.ID, &startedRaw, &finishedRaw, &run.Published, &run.Failed, &run.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
			run.StartedAt = started
		}
		if finished, err := time.Parse(time.RFC3339Nano, finishedRaw); err == nil {
			run.FinishedAt = finished
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunTasks returns the task rows for a run in insertion order.
func (s *Store) RunTasks(ctx context.Context, runID string) ([]TaskRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, item, plugin, status, phase, error_message, duration_ms
         FROM publish_tasks WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query task rows: %w", err)
	}
	defer rows.Close()

	var tasks []TaskRow
	for rows.Next() {
		var (
			task         TaskRow
			phase        sql.NullString
			errorMessage sql.NullString
		)
		if err := rows.Scan(&task.RunID, &task.Item, &task.Plugin, &task.Status, &phase, &errorMessage, &task.DurationMS); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		task.Phase = phase.String
		task.ErrorMessage = errorMessage.String
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
