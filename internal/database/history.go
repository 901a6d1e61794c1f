package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/automatizamg/seilist/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "history.db"

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB stores listing runs and their records.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
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
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}
	dsn += "&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

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

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		org_code TEXT NOT NULL,
		target_unit TEXT NOT NULL,
		active_unit TEXT,
		unit_switched INTEGER NOT NULL DEFAULT 0,
		record_count INTEGER NOT NULL DEFAULT 0,
		received_count INTEGER NOT NULL DEFAULT 0,
		generated_count INTEGER NOT NULL DEFAULT 0,
		canceled INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		run_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS run_records (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		identity TEXT NOT NULL,
		number TEXT NOT NULL,
		category TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		record_json TEXT NOT NULL,
		PRIMARY KEY (run_id, identity)
	);

	CREATE INDEX IF NOT EXISTS idx_records_number ON run_records(number);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunSummary is the stored outcome of one run.
type RunSummary struct {
	// Seq orders runs by insertion.
	Seq int64

	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	OrgCode      string
	TargetUnit   string
	ActiveUnit   string
	UnitSwitched bool
	RecordCount  int
	Received     int
	Generated    int
	Canceled     bool

	// Error is the failure message; empty for successful runs.
	Error string
}

// Duration returns how long the run took.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// SaveRun stores run and its records in one transaction.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.Run) (err error) {
	runJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, started_at, finished_at, org_code, target_unit, active_unit,
		unit_switched, record_count, received_count, generated_count, canceled, error, run_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		formatTime(run.StartedAt),
		formatTime(finished),
		run.OrgCode,
		run.TargetUnit,
		run.ActiveUnit,
		run.UnitSwitched,
		run.RecordCount(),
		run.Records.CountByCategory(model.CategoryReceived),
		run.Records.CountByCategory(model.CategoryGenerated),
		run.Canceled,
		run.ErrorMessage,
		string(runJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO run_records (run_id, position, identity, number, category, fingerprint, record_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Records.Records() {
		recordJSON, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to serialize record %s: %w", r.Identity(), err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.Identity(), r.Number, string(r.Category), r.Fingerprint(), string(recordJSON)); err != nil {
			return fmt.Errorf("failed to save record %s: %w", r.Identity(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `seq, id, started_at, finished_at, org_code, target_unit, active_unit,
	unit_switched, record_count, received_count, generated_count, canceled, error`

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq DESC`
	args := make([]interface{}, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		s, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *s)
	}

	return results, rows.Err()
}

// FindRun returns the run whose ID equals or starts with idOrPrefix.
func (h *HistoryDB) FindRun(ctx context.Context, idOrPrefix string) (*RunSummary, error) {
	if idOrPrefix == "" {
		return nil, ErrRunNotFound
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC, seq DESC LIMIT 2`,
		idOrPrefix, escapeLike(idOrPrefix)+"%", idOrPrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	defer rows.Close()

	var found []*RunSummary
	for rows.Next() {
		s, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if s.ID == idOrPrefix {
			return s, nil
		}
		found = append(found, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRunID, idOrPrefix)
	}
}

// Records returns the records stored for runID in collection order.
func (h *HistoryDB) Records(ctx context.Context, runID string) ([]model.Record, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT record_json FROM run_records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var r model.Record
		if err := json.Unmarshal([]byte(recordJSON), &r); err != nil {
			return nil, fmt.Errorf("failed to parse record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// DeleteRun removes a run and its records.
func (h *HistoryDB) DeleteRun(ctx context.Context, runID string) (err error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM run_records WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*RunSummary, error) {
	var (
		s                 RunSummary
		started, finished string
		activeUnit, msg   sql.NullString
	)
	err := row.Scan(
		&s.Seq,
		&s.ID,
		&started,
		&finished,
		&s.OrgCode,
		&s.TargetUnit,
		&activeUnit,
		&s.UnitSwitched,
		&s.RecordCount,
		&s.Received,
		&s.Generated,
		&s.Canceled,
		&msg,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	s.StartedAt = parseTimestamp(started)
	s.FinishedAt = parseTimestamp(finished)
	s.ActiveUnit = activeUnit.String
	s.Error = msg.String
	return &s, nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
