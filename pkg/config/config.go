// Package config loads the batch task configuration from the
// environment. Static values are baked into the ECS task definition;
// per-invocation values arrive via Step Functions containerOverrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// TaskConfig is the full configuration for one scoring run
type TaskConfig struct {
	// Per-invocation (Step Functions containerOverrides)
	TaskToken    string   // callback token; empty means local-only run
	DriveFileIDs []string // Google Drive file IDs to score
	SaveToDB     bool     // persist results to the job_results table
	GeneratePDF  bool     // include a rendered PDF in the result

	// Static (task definition)
	AnthropicAPIKey   string
	AnthropicBaseURL  string
	GoogleCredentials string // base64-encoded or raw service account JSON
	DatabaseURL       string
	S3Bucket          string
	AWSRegion         string
	MetadataEndpoint  string // ECS container metadata v4 base URI
	CompaniesFile     string // optional YAML override for the company roster
	LogLevel          string
	MetricsPort       string
}

// Load reads the task configuration from environment variables
func Load() (*TaskConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.BindEnv("task_token", "TASK_TOKEN")
	v.BindEnv("drive_file_ids", "GOOGLE_DRIVE_FILE_IDS")
	v.BindEnv("save_to_db", "SAVE_TO_DB")
	v.BindEnv("generate_pdf", "GENERATE_PDF")
	v.BindEnv("anthropic_api_key", "ANTHROPIC_API_KEY", "AI_INTEGRATIONS_ANTHROPIC_API_KEY")
	v.BindEnv("anthropic_base_url", "ANTHROPIC_BASE_URL", "AI_INTEGRATIONS_ANTHROPIC_BASE_URL")
	v.BindEnv("google_credentials", "GOOGLE_CREDENTIALS_JSON")
	v.BindEnv("database_url", "DATABASE_URL")
	v.BindEnv("s3_bucket", "S3_BUCKET")
	v.BindEnv("aws_region", "AWS_REGION")
	v.BindEnv("metadata_endpoint", "ECS_CONTAINER_METADATA_URI_V4")
	v.BindEnv("companies_file", "COMPANIES_FILE")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("metrics_port", "METRICS_PORT")

	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_port", "9090")

	cfg := &TaskConfig{
		TaskToken:         v.GetString("task_token"),
		DriveFileIDs:      ParseFileIDs(v.GetString("drive_file_ids")),
		SaveToDB:          parseBool(v.GetString("save_to_db")),
		GeneratePDF:       parseBool(v.GetString("generate_pdf")),
		AnthropicAPIKey:   v.GetString("anthropic_api_key"),
		AnthropicBaseURL:  v.GetString("anthropic_base_url"),
		GoogleCredentials: v.GetString("google_credentials"),
		DatabaseURL:       v.GetString("database_url"),
		S3Bucket:          v.GetString("s3_bucket"),
		AWSRegion:         v.GetString("aws_region"),
		MetadataEndpoint:  v.GetString("metadata_endpoint"),
		CompaniesFile:     v.GetString("companies_file"),
		LogLevel:          v.GetString("log_level"),
		MetricsPort:       v.GetString("metrics_port"),
	}

	return cfg, nil
}

// Validate checks the work unit inputs are usable. Lifecycle-level
// settings (token, metadata endpoint) are optional by design and not
// validated here.
func (c *TaskConfig) Validate() error {
	if len(c.DriveFileIDs) == 0 {
		return fmt.Errorf("no file IDs provided; set GOOGLE_DRIVE_FILE_IDS")
	}
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY not set")
	}
	if c.GoogleCredentials == "" {
		return fmt.Errorf("GOOGLE_CREDENTIALS_JSON not set")
	}
	if c.SaveToDB && c.DatabaseURL == "" {
		return fmt.Errorf("SAVE_TO_DB set but DATABASE_URL missing")
	}
	return nil
}

// ParseFileIDs splits a comma-separated ID list, dropping empties
func ParseFileIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseBool(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}
