package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wisdl/internal/model"
)

// FileName is the database file created in the database directory.
const FileName = "wisdl.db"

// RunStatus is the outcome of a recorded run.
type RunStatus string

// Run outcomes.
const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores download runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		username TEXT NOT NULL,
		status TEXT NOT NULL,
		studies INTEGER NOT NULL DEFAULT 0,
		courses INTEGER NOT NULL DEFAULT 0,
		files INTEGER NOT NULL DEFAULT 0,
		bytes INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		course TEXT NOT NULL,
		task TEXT NOT NULL,
		year TEXT NOT NULL,
		name TEXT NOT NULL,
		link TEXT NOT NULL,
		path TEXT NOT NULL,
		bytes INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_downloads_run ON downloads(run_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is a stored run.
type RunRecord struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	OutputDir  string
	Username   string
	Status     RunStatus
	Studies    int
	Courses    int
	Files      int
	Bytes      int64
}

// Duration returns how long the run took.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// DownloadRecord is a stored file of a run.
type DownloadRecord struct {
	ID     int64
	RunID  int64
	Course string
	Task   string
	Year   string
	Name   string
	Link   string
	Path   string
	Bytes  int64
}

// SaveRun stores summary and all its files in one transaction and returns
// the new run id.
func (h *HistoryDB) SaveRun(ctx context.Context, summary *model.RunSummary, status RunStatus) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (started_at, finished_at, output_dir, username, status, studies, courses, files, bytes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		formatTimestamp(summary.StartedAt),
		formatTimestamp(summary.FinishedAt),
		summary.OutputDir,
		summary.Username,
		string(status),
		len(summary.Studies),
		len(summary.Courses),
		len(summary.Files),
		summary.TotalBytes(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO downloads (run_id, course, task, year, name, link, path, bytes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare download insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range summary.Files {
		if _, err := stmt.ExecContext(ctx, runID, f.Course, f.Task, f.Year, f.Name, f.Link, f.Path, f.Bytes); err != nil {
			return 0, fmt.Errorf("failed to insert download %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

const runColumns = `id, started_at, finished_at, output_dir, username, status, studies, courses, files, bytes`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var (
		rec               RunRecord
		started, finished string
		status            string
	)
	err := row.Scan(&rec.ID, &started, &finished, &rec.OutputDir, &rec.Username, &status,
		&rec.Studies, &rec.Courses, &rec.Files, &rec.Bytes)
	if err != nil {
		return RunRecord{}, err
	}
	rec.StartedAt = parseTimestamp(started)
	rec.FinishedAt = parseTimestamp(finished)
	rec.Status = RunStatus(status)
	return rec, nil
}

// ListRuns returns the most recent runs, newest first.
// A limit of 0 or less returns all runs.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// GetRun returns one run. It returns ErrRunNotFound for an unknown id.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (RunRecord, error) {
	row := h.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to get run %d: %w", id, err)
	}
	return rec, nil
}

// GetRunDownloads returns the files of a run in download order.
func (h *HistoryDB) GetRunDownloads(ctx context.Context, runID int64) ([]DownloadRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, run_id, course, task, year, name, link, path, bytes
	FROM downloads WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()

	downloads := make([]DownloadRecord, 0)
	for rows.Next() {
		var d DownloadRecord
		if err := rows.Scan(&d.ID, &d.RunID, &d.Course, &d.Task, &d.Year, &d.Name, &d.Link, &d.Path, &d.Bytes); err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}

// timestampLayout is fixed-width so stored values sort chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// timestampFormats lists the layouts accepted when reading timestamps back.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp returns the zero time for an unparseable value.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
