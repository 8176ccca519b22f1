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

	"github.com/locascan/locascan/internal/model"
)

// ErrSessionNotFound is returned when no session matches the query.
var ErrSessionNotFound = errors.New("session not found")

// SessionDB provides SQLite-based storage for scan sessions.
// It manages connection pooling and provides methods for saving and
// querying historical reports.
type SessionDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SessionDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a SessionDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*SessionDB, error) {
	dbPath := filepath.Join(dbDir, "locascan.db")

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

	// Build connection string.
	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
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

	// SQLite only supports one writer; a larger pool buys nothing here.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SessionDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *SessionDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
//
// Design decision: Summary statistics get their own columns so trend
// queries never deserialize report JSON; the full report is stored as
// one JSON blob because individual gaps are only ever read as part of
// their session.
func (sdb *SessionDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target_language TEXT NOT NULL,
		foreign_language TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		snippets_scanned INTEGER NOT NULL,
		gaps_found INTEGER NOT NULL,
		high_confidence_gaps INTEGER NOT NULL,
		cancelled INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_languages ON sessions(target_language, foreign_language);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SessionMetadata is the queryable summary of one stored session.
// Listing sessions returns metadata only; the full report is loaded on
// demand with GetSession.
type SessionMetadata struct {
	ID                 int64
	TargetLanguage     string
	ForeignLanguage    string
	StartedAt          time.Time
	FinishedAt         time.Time
	SnippetsScanned    int
	GapsFound          int
	HighConfidenceGaps int
	Cancelled          bool
}

// SaveSession stores a finalized session report and returns its ID.
func (sdb *SessionDB) SaveSession(ctx context.Context, report *model.SessionReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO sessions (
		target_language, foreign_language, started_at, finished_at,
		snippets_scanned, gaps_found, high_confidence_gaps, cancelled, report_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sdb.db.ExecContext(ctx, query,
		report.TargetLanguage,
		report.ForeignLanguage,
		report.StartedAt.UTC(),
		report.FinishedAt.UTC(),
		report.SnippetsScanned,
		report.TotalGaps(),
		report.HighConfidenceGaps(),
		report.Cancelled,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}

	return result.LastInsertId()
}

// GetSession retrieves a full session report by ID.
// Returns ErrSessionNotFound if no session has that ID.
func (sdb *SessionDB) GetSession(ctx context.Context, id int64) (*model.SessionReport, error) {
	query := `SELECT report_json FROM sessions WHERE id = ?`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	var report model.SessionReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	return &report, nil
}

// GetLatestSession retrieves the most recently started session report.
// Returns ErrSessionNotFound if the database is empty.
func (sdb *SessionDB) GetLatestSession(ctx context.Context) (*model.SessionReport, error) {
	query := `SELECT report_json FROM sessions ORDER BY started_at DESC, id DESC LIMIT 1`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest session: %w", err)
	}

	var report model.SessionReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	return &report, nil
}

// ListSessions returns metadata for all stored sessions, newest first.
func (sdb *SessionDB) ListSessions(ctx context.Context) ([]SessionMetadata, error) {
	query := `
	SELECT id, target_language, foreign_language, started_at, finished_at,
		snippets_scanned, gaps_found, high_confidence_gaps, cancelled
	FROM sessions
	ORDER BY started_at DESC, id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []SessionMetadata
	for rows.Next() {
		var m SessionMetadata
		if err := rows.Scan(
			&m.ID,
			&m.TargetLanguage,
			&m.ForeignLanguage,
			&m.StartedAt,
			&m.FinishedAt,
			&m.SnippetsScanned,
			&m.GapsFound,
			&m.HighConfidenceGaps,
			&m.Cancelled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}
