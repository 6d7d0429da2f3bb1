package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/strainkit/strainkit/internal/model"
)

// DBFileName is the name of the SQLite database file inside the data
// directory.
const DBFileName = "strainkit.db"

// RunDB provides SQLite-based storage for build run history.
// Every completed build (successful or not) is recorded with its full
// report, so past runs can be listed and inspected later.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses a query-parameter connection string.
	// mode=rw prevents creating new files; mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store one row per pipeline execution with the full report as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		dataset TEXT,
		started DATETIME,
		finished DATETIME,
		success INTEGER NOT NULL DEFAULT 0,
		artifacts_complete INTEGER NOT NULL DEFAULT 0,
		dry_run INTEGER NOT NULL DEFAULT 0,
		failed_stage TEXT,
		error TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_uuid ON runs(uuid);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);

	-- Stage results store per-stage rows for SQL-level inspection
	CREATE TABLE IF NOT EXISTS stage_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_uuid TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		command TEXT,
		exit_code INTEGER,
		duration_ms INTEGER,
		error TEXT,
		outputs TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_stage_results_run ON stage_results(run_uuid);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveBuildReport stores a complete build report.
// The run row and its stage rows are written in one transaction.
func (rdb *RunDB) SaveBuildReport(ctx context.Context, report *model.BuildReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (uuid, title, dataset, started, finished, success, artifacts_complete, dry_run, failed_stage, error, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.RunID,
		report.Title,
		report.DatasetPath,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		report.Success,
		report.ArtifactsComplete,
		report.DryRun,
		report.FailedStage,
		report.ErrorMessage,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, stage := range report.Stages {
		outputsJSON, err := json.Marshal(stage.Outputs)
		if err != nil {
			return fmt.Errorf("failed to serialize stage outputs: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
		INSERT INTO stage_results (run_uuid, seq, name, command, exit_code, duration_ms, error, outputs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			report.RunID,
			i,
			stage.Name,
			stage.Command,
			stage.ExitCode,
			stage.Duration.Milliseconds(),
			stage.Err,
			string(outputsJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to insert stage result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunMetadata contains summary information about a stored run.
// This is used for listing run history without loading full reports.
type RunMetadata struct {
	// ID is the row identifier of the run in the database.
	ID int64 `json:"id"`

	// UUID is the run identifier assigned when the build started.
	UUID string `json:"uuid"`

	// Title is the analysis title the run was built with.
	Title string `json:"title"`

	// Dataset is the path of the exported auspice dataset.
	Dataset string `json:"dataset"`

	// Started is when the run began.
	Started time.Time `json:"started"`

	// Finished is when the run ended. Zero if the run never finished.
	Finished time.Time `json:"finished"`

	// Success reports whether every stage completed.
	Success bool `json:"success"`

	// ArtifactsComplete reports whether the dataset was fully built.
	ArtifactsComplete bool `json:"artifacts_complete"`

	// DryRun reports whether the run only previewed commands.
	DryRun bool `json:"dry_run"`

	// FailedStage names the stage that failed, if any.
	FailedStage string `json:"failed_stage,omitempty"`

	// StageCount is the number of stage results recorded for the run.
	StageCount int `json:"stage_count"`
}

// ListRuns returns metadata for the most recent runs, newest first.
// A limit of zero or less returns up to 20 runs.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT r.id, r.uuid, r.title, r.dataset, r.started, r.finished,
	       r.success, r.artifacts_complete, r.dry_run, r.failed_stage,
	       COUNT(s.id)
	FROM runs r
	LEFT JOIN stage_results s ON s.run_uuid = r.uuid
	GROUP BY r.id
	ORDER BY r.started DESC, r.id DESC
	LIMIT ?
	`

	rows, err := rdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var started, finished string

		err := rows.Scan(
			&meta.ID,
			&meta.UUID,
			&meta.Title,
			&meta.Dataset,
			&started,
			&finished,
			&meta.Success,
			&meta.ArtifactsComplete,
			&meta.DryRun,
			&meta.FailedStage,
			&meta.StageCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.Started = parseTimestamp(started)
		meta.Finished = parseTimestamp(finished)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun retrieves a full build report by reference.
// The reference can be a row ID from ListRuns or a run UUID prefix.
// When a prefix matches several runs, the most recent one is returned.
// Returns nil without error when nothing matches.
func (rdb *RunDB) GetRun(ctx context.Context, ref string) (*model.BuildReport, error) {
	var reportJSON string
	var err error

	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		err = rdb.db.QueryRowContext(ctx,
			`SELECT report_json FROM runs WHERE id = ?`, id,
		).Scan(&reportJSON)
	} else {
		err = rdb.db.QueryRowContext(ctx,
			`SELECT report_json FROM runs WHERE uuid LIKE ? || '%' ORDER BY started DESC, id DESC LIMIT 1`, ref,
		).Scan(&reportJSON)
	}
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return unmarshalReport(reportJSON)
}

// LatestRun retrieves the most recently started run.
// Returns nil without error when the database is empty.
func (rdb *RunDB) LatestRun(ctx context.Context) (*model.BuildReport, error) {
	var reportJSON string
	err := rdb.db.QueryRowContext(ctx,
		`SELECT report_json FROM runs ORDER BY started DESC, id DESC LIMIT 1`,
	).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return unmarshalReport(reportJSON)
}

// unmarshalReport parses a stored report_json column value.
func unmarshalReport(reportJSON string) (*model.BuildReport, error) {
	var report model.BuildReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// formatTimestamp serializes a time for storage. Zero times are stored as
// empty strings so unfinished runs stay distinguishable.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Storage format used by formatTimestamp
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
