// Command scoretask is the batch container entrypoint. Step Functions
// launches one task per scoring job; the process protects itself from
// scale-in, runs the scoring pipeline once, reports the outcome back
// through the callback token, and exits.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/callback"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/config"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/drive"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/lifecycle"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/logging"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/metrics"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/protection"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/report"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/scoring"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/store"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/taskmeta"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := logging.NewFileLogger("scoretask", logging.ParseLevel(cfg.LogLevel), true)
	if err != nil {
		logger = logging.NewLogger(logging.ParseLevel(cfg.LogLevel), true)
	}
	defer logger.Close()

	logHostInfo(logger)

	ctx := context.Background()

	// AWS clients are best-effort: without them the run still scores
	// and logs, it just cannot protect the task or call back. That
	// keeps local container runs usable.
	var (
		ecsClient *ecs.Client
		sfnClient *sfn.Client
		s3Client  *s3.Client
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Warn("AWS configuration unavailable, lifecycle integrations disabled", map[string]interface{}{"error": err.Error()})
	} else {
		ecsClient = ecs.NewFromConfig(awsCfg)
		sfnClient = sfn.NewFromConfig(awsCfg)
		s3Client = s3.NewFromConfig(awsCfg)
	}

	resolver := taskmeta.NewResolver(cfg.MetadataEndpoint, logger)

	var protector lifecycle.ProtectionController = protection.NewController(nil, logger)
	if ecsClient != nil {
		protector = protection.NewController(ecsClient, logger)
	}

	var s3Writer *report.S3Writer
	if s3Client != nil && cfg.S3Bucket != "" {
		s3Writer = report.NewS3Writer(s3Client, cfg.S3Bucket, logger)
	}

	reporter := callback.NewReporter(sfnClient, logger)
	if s3Writer != nil {
		reporter.SetDeadLetterWriter(s3Writer)
	}

	registry := prometheus.NewRegistry()
	taskMetrics := metrics.New(registry)
	startMetricsServer(cfg.MetricsPort, registry, logger)

	orch := lifecycle.New(lifecycle.Config{
		Resolver:   resolver,
		Protection: protector,
		Reporter:   &instrumentedReporter{inner: reporter, metrics: taskMetrics},
		TaskToken:  cfg.TaskToken,
		Logger:     logger,
	})

	work := buildWork(cfg, s3Writer, taskMetrics, logger)

	code := orch.Run(ctx, work)
	if code == 0 {
		taskMetrics.RecordRun("success")
	} else {
		taskMetrics.RecordRun("failure")
	}
	return code
}

// buildWork assembles the scoring pipeline lazily so configuration
// and dependency failures surface as reportable work errors instead
// of skipping the lifecycle entirely.
func buildWork(cfg *config.TaskConfig, s3Writer *report.S3Writer, taskMetrics *metrics.TaskMetrics, logger *logging.Logger) lifecycle.WorkFunc {
	return func(ctx context.Context) (*models.JobResult, error) {
		if err := cfg.Validate(); err != nil {
			return nil, models.NewWorkError(models.KindInvalidInput, err)
		}

		roster, err := scoring.LoadRoster(cfg.CompaniesFile)
		if err != nil {
			return nil, models.NewWorkError(models.KindInvalidInput, err)
		}

		downloader, err := drive.NewClient(ctx, cfg.GoogleCredentials, logger)
		if err != nil {
			return nil, models.NewWorkError(models.KindInvalidInput, err)
		}

		var resultStore scoring.ResultStore
		if cfg.SaveToDB {
			st, err := store.NewStore(cfg.DatabaseURL)
			if err != nil {
				logger.Warn("Database unavailable, persistence disabled for this run", map[string]interface{}{"error": err.Error()})
			} else {
				defer st.Close()
				resultStore = st
			}
		}

		var objects scoring.ResultWriter
		if s3Writer != nil {
			objects = s3Writer
		}

		var pdf scoring.PDFRenderer
		if cfg.GeneratePDF {
			pdf = report.NewPDFGenerator()
		}

		runner := scoring.NewRunner(scoring.RunnerConfig{
			Downloader: downloader,
			Scorer: scoring.NewScorer(scoring.ScorerConfig{
				APIKey:  cfg.AnthropicAPIKey,
				BaseURL: cfg.AnthropicBaseURL,
				Roster:  roster,
				Logger:  logger,
			}),
			Store:   resultStore,
			Objects: objects,
			PDF:     pdf,
			FileIDs: cfg.DriveFileIDs,
			Metrics: taskMetrics,
			Logger:  logger,
		})

		return runner.Run(ctx)
	}
}

// startMetricsServer serves /metrics and /healthz on a side port for
// the duration of the run. Failures are logged, never fatal.
func startMetricsServer(port string, registry *prometheus.Registry, logger *logging.Logger) {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("Metrics server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
}

// logHostInfo records the container's resources at startup for
// capacity debugging
func logHostInfo(logger *logging.Logger) {
	fields := map[string]interface{}{
		"go_version": runtime.Version(),
		"num_cpu":    runtime.NumCPU(),
	}
	if counts, err := cpu.Counts(true); err == nil {
		fields["cpu_threads"] = counts
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fields["ram_total_mb"] = vm.Total / 1024 / 1024
		fields["ram_free_mb"] = vm.Available / 1024 / 1024
	}
	logger.Info("Task container starting", fields)
}

// instrumentedReporter counts callback deliveries around the real
// reporter
type instrumentedReporter struct {
	inner   *callback.Reporter
	metrics *metrics.TaskMetrics
}

func (r *instrumentedReporter) ReportSuccess(ctx context.Context, token string, result *models.JobResult) error {
	err := r.inner.ReportSuccess(ctx, token, result)
	r.metrics.RecordCallback("success", err == nil)
	return err
}

func (r *instrumentedReporter) ReportFailure(ctx context.Context, token, errKind, cause string) error {
	err := r.inner.ReportFailure(ctx, token, errKind, cause)
	r.metrics.RecordCallback("failure", err == nil)
	return err
}
