package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
)

// SQLiteStore is a SQLite-based implementation of the result store,
// used by the CLI for local runs
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) a SQLite result store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL keeps reads from blocking the single writer; the busy
	// timeout covers overlapping CLI invocations
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS job_results (
		job_id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		analyzed_at DATETIME NOT NULL,
		summary TEXT NOT NULL,
		scores TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_job_results_analyzed_at ON job_results(analyzed_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveJobResult upserts one scoring result
func (s *SQLiteStore) SaveJobResult(ctx context.Context, jobID, filename string, analyzedAt time.Time, summary models.JobSummary, scores *models.ScoreCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO job_results (job_id, filename, analyzed_at, summary, scores)
		VALUES (?, ?, ?, ?, ?)
	`, jobID, filename, analyzedAt, string(summaryJSON), string(scoresJSON))
	if err != nil {
		return fmt.Errorf("failed to save job result: %w", err)
	}

	return nil
}

// GetJobResult fetches one result by job ID
func (s *SQLiteStore) GetJobResult(ctx context.Context, jobID string) (*JobRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT job_id, filename, analyzed_at, summary, scores, created_at
		FROM job_results WHERE job_id = ?
	`, jobID)

	record, err := scanJobRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job result %s not found", jobID)
	}
	return record, err
}

// ListJobResults returns the most recent results, newest first
func (s *SQLiteStore) ListJobResults(ctx context.Context, limit int) ([]*JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT job_id, filename, analyzed_at, summary, scores, created_at
		FROM job_results ORDER BY analyzed_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list job results: %w", err)
	}
	defer rows.Close()

	var records []*JobRecord
	for rows.Next() {
		record, err := scanJobRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies database connectivity
func (s *SQLiteStore) HealthCheck() error {
	return s.db.Ping()
}
