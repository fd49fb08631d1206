package models

import (
	"time"
)

// JobSummary is the condensed summary stored alongside the scores and
// echoed back to the coordinator
type JobSummary struct {
	TotalSheets     int            `json:"total_sheets"`
	SheetsWithScope int            `json:"sheets_with_scope"`
	ScopeCounts     map[string]int `json:"scope_counts"`
	FilesAnalyzed   []string       `json:"files_analyzed"`
}

// JobResult is the terminal success payload for one scoring run
type JobResult struct {
	Status                string     `json:"status"`
	JobID                 string     `json:"job_id"`
	Filename              string     `json:"filename"`
	FilesAnalyzed         []string   `json:"files_analyzed"`
	AnalyzedAt            time.Time  `json:"analyzed_at"`
	Summary               JobSummary `json:"summary"`
	Scores                *ScoreCard `json:"scores"`
	ProcessingTimeSeconds float64    `json:"processing_time_seconds"`
	S3Key                 string     `json:"s3_key,omitempty"`
	S3Bucket              string     `json:"s3_bucket,omitempty"`
	PDFBase64             string     `json:"pdf_base64,omitempty"`
	PDFError              string     `json:"pdf_error,omitempty"`
}

// StatusCompleted is the terminal status carried in a successful
// JobResult
const StatusCompleted = "completed"
