package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
)

// JobRecord is one persisted scoring result
type JobRecord struct {
	JobID      string
	Filename   string
	AnalyzedAt time.Time
	Summary    models.JobSummary
	Scores     *models.ScoreCard
	CreatedAt  time.Time
}

// Store defines the interface for result persistence
// Both SQLite and PostgreSQL implement this interface
type Store interface {
	SaveJobResult(ctx context.Context, jobID, filename string, analyzedAt time.Time, summary models.JobSummary, scores *models.ScoreCard) error
	GetJobResult(ctx context.Context, jobID string) (*JobRecord, error)
	ListJobResults(ctx context.Context, limit int) ([]*JobRecord, error)

	// Lifecycle
	Close() error
	HealthCheck() error
}

// NewStore opens the store matching the connection string. Postgres
// URLs get the Postgres implementation; anything else is treated as a
// SQLite file path.
func NewStore(databaseURL string) (Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("empty database URL")
	}
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return NewPostgresStore(databaseURL)
	}
	return NewSQLiteStore(databaseURL)
}
