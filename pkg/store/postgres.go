package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
)

// PostgresStore is a PostgreSQL-based implementation of the result
// store. This is what the deployed task uses via DATABASE_URL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL and ensures the schema
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS job_results (
		job_id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		analyzed_at TIMESTAMPTZ NOT NULL,
		summary JSONB NOT NULL,
		scores JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_job_results_analyzed_at ON job_results(analyzed_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveJobResult upserts one scoring result
func (s *PostgresStore) SaveJobResult(ctx context.Context, jobID, filename string, analyzedAt time.Time, summary models.JobSummary, scores *models.ScoreCard) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO job_results (job_id, filename, analyzed_at, summary, scores)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (job_id) DO UPDATE SET
			filename = EXCLUDED.filename,
			analyzed_at = EXCLUDED.analyzed_at,
			summary = EXCLUDED.summary,
			scores = EXCLUDED.scores
	`, jobID, filename, analyzedAt, summaryJSON, scoresJSON)
	if err != nil {
		return fmt.Errorf("failed to save job result: %w", err)
	}

	return nil
}

// GetJobResult fetches one result by job ID
func (s *PostgresStore) GetJobResult(ctx context.Context, jobID string) (*JobRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT job_id, filename, analyzed_at, summary, scores, created_at
		FROM job_results WHERE job_id = $1
	`, jobID)

	record, err := scanJobRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job result %s not found", jobID)
	}
	return record, err
}

// ListJobResults returns the most recent results, newest first
func (s *PostgresStore) ListJobResults(ctx context.Context, limit int) ([]*JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT job_id, filename, analyzed_at, summary, scores, created_at
		FROM job_results ORDER BY analyzed_at DESC LIMIT $1
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies database connectivity
func (s *PostgresStore) HealthCheck() error {
	return s.db.Ping()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJobRecord(row rowScanner) (*JobRecord, error) {
	var (
		record      JobRecord
		summaryJSON []byte
		scoresJSON  []byte
	)
	if err := row.Scan(&record.JobID, &record.Filename, &record.AnalyzedAt, &summaryJSON, &scoresJSON, &record.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan job result: %w", err)
	}

	if err := json.Unmarshal(summaryJSON, &record.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	record.Scores = &models.ScoreCard{}
	if err := json.Unmarshal(scoresJSON, record.Scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
	}

	return &record, nil
}
