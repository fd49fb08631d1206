package scoring

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/logging"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/metrics"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
)

// Downloader fetches a spreadsheet by file ID
type Downloader interface {
	Download(ctx context.Context, fileID string) (filename string, data []byte, err error)
}

// ScoreProvider turns a scope summary into a score card
type ScoreProvider interface {
	Score(ctx context.Context, summary models.ScopeSummary) (*models.ScoreCard, error)
}

// ResultStore persists finished job results. Implementations live in
// pkg/store; the runner only needs the save half.
type ResultStore interface {
	SaveJobResult(ctx context.Context, jobID, filename string, analyzedAt time.Time, summary models.JobSummary, scores *models.ScoreCard) error
}

// ResultWriter uploads the result document to object storage and
// returns the key it was written under.
type ResultWriter interface {
	WriteResult(ctx context.Context, jobID string, payload []byte) (bucket string, key string, err error)
}

// PDFRenderer renders a human-readable report for a finished job
type PDFRenderer interface {
	Render(filename string, summary models.JobSummary, scores *models.ScoreCard) ([]byte, error)
}

// Runner executes the full scoring pipeline for one batch of input
// files: download, parse, summarize, score, persist, upload.
type Runner struct {
	downloader Downloader
	scorer     ScoreProvider
	store      ResultStore
	objects    ResultWriter
	pdf        PDFRenderer
	fileIDs    []string
	metrics    *metrics.TaskMetrics
	logger     *logging.Logger
}

// RunnerConfig wires a Runner. Store, Objects and PDF are optional;
// leaving any of them nil disables that output.
type RunnerConfig struct {
	Downloader Downloader
	Scorer     ScoreProvider
	Store      ResultStore
	Objects    ResultWriter
	PDF        PDFRenderer
	FileIDs    []string
	Metrics    *metrics.TaskMetrics
	Logger     *logging.Logger
}

func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger(logging.INFO, false)
	}
	return &Runner{
		downloader: cfg.Downloader,
		scorer:     cfg.Scorer,
		store:      cfg.Store,
		objects:    cfg.Objects,
		pdf:        cfg.PDF,
		fileIDs:    cfg.FileIDs,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// Run processes every configured file and returns the combined job
// result. A nil result always comes with a non-nil error carrying the
// failure kind for the caller's terminal report.
func (r *Runner) Run(ctx context.Context) (*models.JobResult, error) {
	start := time.Now()

	if len(r.fileIDs) == 0 {
		return nil, models.Errorf(models.KindInvalidInput, "no input file IDs configured")
	}
	if r.downloader == nil {
		return nil, models.Errorf(models.KindInvalidInput, "no downloader configured")
	}
	if r.scorer == nil {
		return nil, models.Errorf(models.KindInvalidInput, "no scorer configured")
	}

	var (
		summaries []models.ScopeSummary
		filenames []string
	)
	for _, fileID := range r.fileIDs {
		stageStart := time.Now()
		name, data, err := r.downloader.Download(ctx, fileID)
		if err != nil {
			return nil, models.NewWorkError(models.KindDriveDownload,
				fmt.Errorf("downloading file %s: %w", fileID, err))
		}
		r.metrics.ObserveStage("download", time.Since(stageStart).Seconds())

		stageStart = time.Now()
		rows, err := ParseWorkbook(data)
		if err != nil {
			return nil, models.NewWorkError(models.KindSpreadsheetParse,
				fmt.Errorf("parsing %s: %w", name, err))
		}
		summary := PrepareScopeSummary(rows)
		r.metrics.ObserveStage("parse", time.Since(stageStart).Seconds())
		r.metrics.AddSheets(summary.TotalSheets)

		r.logger.Info("Processed input file", map[string]interface{}{
			"file_id":           fileID,
			"filename":          name,
			"total_sheets":      summary.TotalSheets,
			"sheets_with_scope": summary.SheetsWithScope,
		})

		summaries = append(summaries, summary)
		filenames = append(filenames, name)
	}

	combined := summaries[0]
	if len(summaries) > 1 {
		combined = CombineScopeData(summaries)
	}

	stageStart := time.Now()
	scores, err := r.scorer.Score(ctx, combined)
	if err != nil {
		return nil, err
	}
	r.metrics.ObserveStage("score", time.Since(stageStart).Seconds())
	r.metrics.SetPackageScore(scores.PackageScore)

	jobID := uuid.New().String()[:8]
	displayName := filenames[0]
	if len(filenames) > 1 {
		displayName = fmt.Sprintf("%d files: %s", len(filenames), strings.Join(filenames, ", "))
	}
	analyzedAt := time.Now().UTC()

	summary := models.JobSummary{
		TotalSheets:     combined.TotalSheets,
		SheetsWithScope: combined.SheetsWithScope,
		ScopeCounts:     combined.ScopeIndicatorCounts,
		FilesAnalyzed:   filenames,
	}

	if r.store != nil {
		if err := r.store.SaveJobResult(ctx, jobID, displayName, analyzedAt, summary, scores); err != nil {
			r.logger.Warn("Database save failed, continuing without persistence", map[string]interface{}{
				"job_id": jobID,
				"error":  err.Error(),
			})
		} else {
			r.logger.Info("Saved job result to database", map[string]interface{}{"job_id": jobID})
		}
	}

	result := &models.JobResult{
		Status:                models.StatusCompleted,
		JobID:                 jobID,
		Filename:              displayName,
		FilesAnalyzed:         filenames,
		AnalyzedAt:            analyzedAt,
		Summary:               summary,
		Scores:                scores,
		ProcessingTimeSeconds: math.Round(time.Since(start).Seconds()*10) / 10,
	}

	if r.objects != nil {
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding result document: %w", err)
		}
		stageStart = time.Now()
		bucket, key, err := r.objects.WriteResult(ctx, jobID, payload)
		if err != nil {
			return nil, fmt.Errorf("writing result to object storage: %w", err)
		}
		r.metrics.ObserveStage("upload", time.Since(stageStart).Seconds())
		result.S3Bucket = bucket
		result.S3Key = key
		r.logger.Info("Wrote result document", map[string]interface{}{
			"bucket": bucket,
			"key":    key,
		})
	}

	if r.pdf != nil {
		pdfBytes, err := r.pdf.Render(displayName, summary, scores)
		if err != nil {
			r.logger.Warn("PDF generation failed, continuing without report", map[string]interface{}{
				"job_id": jobID,
				"error":  err.Error(),
			})
			result.PDFError = err.Error()
		} else {
			result.PDFBase64 = base64.StdEncoding.EncodeToString(pdfBytes)
		}
	}

	r.logger.Info("Scoring run complete", map[string]interface{}{
		"job_id":          jobID,
		"files_analyzed":  strings.Join(filenames, ", "),
		"package_score":   scores.PackageScore,
		"processing_secs": result.ProcessingTimeSeconds,
	})

	return result, nil
}
