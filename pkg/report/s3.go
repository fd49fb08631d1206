package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/logging"
)

// S3API is the slice of the S3 client the writer needs
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Writer stores result documents and dead-lettered callback
// payloads in one bucket
type S3Writer struct {
	api    S3API
	bucket string
	logger *logging.Logger
}

// NewS3Writer creates a writer for the given bucket
func NewS3Writer(api S3API, bucket string, logger *logging.Logger) *S3Writer {
	if logger == nil {
		logger = logging.NewLogger(logging.INFO, false)
	}
	return &S3Writer{api: api, bucket: bucket, logger: logger}
}

// Bucket returns the configured bucket name
func (w *S3Writer) Bucket() string {
	return w.bucket
}

// WriteResult stores the result document under results/<jobID>.json
// and returns the bucket and key
func (w *S3Writer) WriteResult(ctx context.Context, jobID string, payload []byte) (string, string, error) {
	key := fmt.Sprintf("results/%s.json", jobID)
	if err := w.put(ctx, key, payload); err != nil {
		return "", "", err
	}
	return w.bucket, key, nil
}

// WriteDeadLetter stores an undeliverable callback payload under
// deadletter/<name>.json
func (w *S3Writer) WriteDeadLetter(ctx context.Context, name string, payload []byte) error {
	return w.put(ctx, fmt.Sprintf("deadletter/%s.json", name), payload)
}

func (w *S3Writer) put(ctx context.Context, key string, payload []byte) error {
	if w.api == nil {
		return fmt.Errorf("no S3 client configured")
	}
	if w.bucket == "" {
		return fmt.Errorf("no S3 bucket configured")
	}

	_, err := w.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to write s3://%s/%s: %w", w.bucket, key, err)
	}

	w.logger.Debug("Wrote object", map[string]interface{}{
		"bucket": w.bucket,
		"key":    key,
		"bytes":  len(payload),
	})
	return nil
}
