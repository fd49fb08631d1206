// Package callback delivers the single terminal signal for a scoring
// run to the Step Functions execution that launched it, addressed by a
// one-shot task token.
//
// An absent token turns both operations into logged no-ops (local-only
// run). Transport failures are the one error class this process
// surfaces loudly: an undelivered callback leaves the state machine
// stuck until its own timeout, so errors are logged, optionally
// dead-lettered, and returned to the caller.
package callback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/logging"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
)

// MaxCauseLength is the coordinator's limit on failure causes. Longer
// causes are truncated, never rejected.
const MaxCauseLength = 256

// SFNAPI is the slice of the Step Functions client the reporter needs
type SFNAPI interface {
	SendTaskSuccess(ctx context.Context, params *sfn.SendTaskSuccessInput, optFns ...func(*sfn.Options)) (*sfn.SendTaskSuccessOutput, error)
	SendTaskFailure(ctx context.Context, params *sfn.SendTaskFailureInput, optFns ...func(*sfn.Options)) (*sfn.SendTaskFailureOutput, error)
}

// DeadLetterWriter receives callback payloads that could not be
// delivered, for operator recovery
type DeadLetterWriter interface {
	WriteDeadLetter(ctx context.Context, name string, payload []byte) error
}

// Reporter sends terminal task signals to Step Functions
type Reporter struct {
	api        SFNAPI
	logger     *logging.Logger
	deadLetter DeadLetterWriter
}

// NewReporter creates a callback reporter. A nil api means callbacks
// are unavailable; both operations then degrade to logged no-ops.
func NewReporter(api SFNAPI, logger *logging.Logger) *Reporter {
	return &Reporter{api: api, logger: logger}
}

// SetDeadLetterWriter installs a best-effort sink for undeliverable
// callback payloads
func (r *Reporter) SetDeadLetterWriter(w DeadLetterWriter) {
	r.deadLetter = w
}

// ReportSuccess sends SendTaskSuccess with the serialized result
func (r *Reporter) ReportSuccess(ctx context.Context, token string, result *models.JobResult) error {
	if token == "" {
		r.logger.Info("No task token set; skipping SendTaskSuccess")
		return nil
	}
	if r.api == nil {
		r.logger.Error("Callback transport unavailable; SendTaskSuccess not sent")
		return fmt.Errorf("callback transport unavailable")
	}

	output, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result payload: %w", err)
	}

	_, err = r.api.SendTaskSuccess(ctx, &sfn.SendTaskSuccessInput{
		TaskToken: aws.String(token),
		Output:    aws.String(string(output)),
	})
	if err != nil {
		r.logger.Error("SendTaskSuccess failed", map[string]interface{}{"error": err.Error()})
		r.writeDeadLetter(ctx, result.JobID, output)
		return fmt.Errorf("SendTaskSuccess failed: %w", err)
	}

	r.logger.Info("SendTaskSuccess sent")
	return nil
}

// ReportFailure sends SendTaskFailure with the error kind and the
// truncated cause
func (r *Reporter) ReportFailure(ctx context.Context, token, errKind, cause string) error {
	if token == "" {
		r.logger.Info("No task token set; skipping SendTaskFailure", map[string]interface{}{"error_kind": errKind})
		return nil
	}
	if r.api == nil {
		r.logger.Error("Callback transport unavailable; SendTaskFailure not sent", map[string]interface{}{"error_kind": errKind})
		return fmt.Errorf("callback transport unavailable")
	}

	_, err := r.api.SendTaskFailure(ctx, &sfn.SendTaskFailureInput{
		TaskToken: aws.String(token),
		Error:     aws.String(errKind),
		Cause:     aws.String(Truncate(cause, MaxCauseLength)),
	})
	if err != nil {
		r.logger.Error("SendTaskFailure failed", map[string]interface{}{
			"error_kind": errKind,
			"error":      err.Error(),
		})
		payload, merr := json.Marshal(map[string]string{"error": errKind, "cause": cause})
		if merr == nil {
			r.writeDeadLetter(ctx, fmt.Sprintf("failure-%d", time.Now().Unix()), payload)
		}
		return fmt.Errorf("SendTaskFailure failed: %w", err)
	}

	r.logger.Info("SendTaskFailure sent", map[string]interface{}{"error_kind": errKind})
	return nil
}

// writeDeadLetter best-effort preserves an undeliverable payload.
// Its own failures are logged and dropped; the process is exiting.
func (r *Reporter) writeDeadLetter(ctx context.Context, name string, payload []byte) {
	if r.deadLetter == nil {
		return
	}
	if err := r.deadLetter.WriteDeadLetter(ctx, name, payload); err != nil {
		r.logger.Error("Dead-letter write failed", map[string]interface{}{"error": err.Error()})
		return
	}
	r.logger.Info("Undelivered callback payload dead-lettered", map[string]interface{}{"name": name})
}

// Truncate bounds s to max characters, preserving the prefix
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
