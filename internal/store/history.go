// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     store
// Description: SQLite persistence of validation runs
// Author:      Mike Stoffels
// Created:     2025-02-16
// License:     MIT
// ============================================================================

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Origin names the front end that triggered a validation
type Origin string

const (
	OriginCLI  Origin = "cli"
	OriginLSP  Origin = "lsp"
	OriginGRPC Origin = "grpc"
)

// Run is one recorded validation
type Run struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Origin    Origin        `json:"origin"`
	Source    string        `json:"source"`
	OK        bool          `json:"ok"`
	Code      string        `json:"code,omitempty"`
	Message   string        `json:"message,omitempty"`
	Line      int           `json:"line"`
	Character int           `json:"character"`
	Tokens    int           `json:"tokens"`
	Functions int           `json:"functions"`
	Duration  time.Duration `json:"duration"`
}

// Filter selects runs
type Filter struct {
	Source       string
	Origin       Origin
	FailuresOnly bool
	Since        time.Time
	Limit        int
}

// Stats summarizes the history
type Stats struct {
	Total    int            `json:"total"`
	Failures int            `json:"failures"`
	ByCode   map[string]int `json:"by_code"`
}

// HistoryStore persists validation runs
type HistoryStore interface {
	Record(ctx context.Context, run *Run) error
	Query(ctx context.Context, filter Filter) ([]*Run, error)
	Recent(ctx context.Context, limit int) ([]*Run, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteStore implements HistoryStore using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Config holds configuration for the SQLite store
type Config struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Path: "./data/history.db",
	}
}

// NewSQLiteStore opens or creates the history database
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		origin TEXT NOT NULL,
		source TEXT NOT NULL,
		ok INTEGER NOT NULL,
		code TEXT,
		message TEXT,
		line INTEGER NOT NULL DEFAULT 0,
		character INTEGER NOT NULL DEFAULT 0,
		tokens INTEGER NOT NULL DEFAULT 0,
		functions INTEGER NOT NULL DEFAULT 0,
		duration_us INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_code ON runs(code);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run. ID and Timestamp are filled in when empty.
func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, timestamp, origin, source, ok, code, message, line, character, tokens, functions, duration_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Timestamp.UTC(), string(run.Origin), run.Source, run.OK, run.Code, run.Message,
		run.Line, run.Character, run.Tokens, run.Functions, run.Duration.Microseconds())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Query retrieves runs, newest first
func (s *SQLiteStore) Query(ctx context.Context, filter Filter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, timestamp, origin, source, ok, code, message, line, character, tokens, functions, duration_us
		FROM runs WHERE 1=1`
	var args []interface{}

	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, filter.Source)
	}
	if filter.Origin != "" {
		query += " AND origin = ?"
		args = append(args, string(filter.Origin))
	}
	if filter.FailuresOnly {
		query += " AND ok = 0"
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var origin string
		var code, message sql.NullString
		var durationUS int64

		if err := rows.Scan(&run.ID, &run.Timestamp, &origin, &run.Source, &run.OK, &code, &message,
			&run.Line, &run.Character, &run.Tokens, &run.Functions, &durationUS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Origin = Origin(origin)
		run.Code = code.String
		run.Message = message.String
		run.Duration = time.Duration(durationUS) * time.Microsecond
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// Recent returns the latest runs
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*Run, error) {
	return s.Query(ctx, Filter{Limit: limit})
}

// Stats counts runs and failures per diagnostic code
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByCode: make(map[string]int)}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END), 0) FROM runs`).
		Scan(&stats.Total, &stats.Failures)
	if err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT code, COUNT(*) FROM runs WHERE ok = 0 GROUP BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to group runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code sql.NullString
		var count int
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats.ByCode[code.String] = count
	}

	return stats, rows.Err()
}

// Prune removes runs older than the given age
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return result.RowsAffected()
}

// Ping verifies the database is reachable
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
