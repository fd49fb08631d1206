package config

import (
	"testing"
)

func TestParseFileIDs(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abc,def", 2},
		{" abc , def ", 2},
		{"abc,,def,", 2},
		{",,,", 0},
	}

	for _, tt := range tests {
		if got := ParseFileIDs(tt.raw); len(got) != tt.want {
			t.Errorf("ParseFileIDs(%q) = %v, want %d IDs", tt.raw, got, tt.want)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AWSRegion == "" {
		t.Error("Expected default AWS region")
	}
	if cfg.MetricsPort == "" {
		t.Error("Expected default metrics port")
	}
}

func TestLoad_PerInvocationOverrides(t *testing.T) {
	t.Setenv("TASK_TOKEN", "tok-123")
	t.Setenv("GOOGLE_DRIVE_FILE_IDS", "file1, file2")
	t.Setenv("SAVE_TO_DB", "true")
	t.Setenv("GENERATE_PDF", "TRUE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TaskToken != "tok-123" {
		t.Errorf("Expected token tok-123, got %s", cfg.TaskToken)
	}
	if len(cfg.DriveFileIDs) != 2 || cfg.DriveFileIDs[0] != "file1" {
		t.Errorf("Unexpected file IDs: %v", cfg.DriveFileIDs)
	}
	if !cfg.SaveToDB {
		t.Error("Expected SaveToDB true")
	}
	if !cfg.GeneratePDF {
		t.Error("Expected GeneratePDF true (case-insensitive)")
	}
}

func TestLoad_AnthropicKeyFallback(t *testing.T) {
	t.Setenv("AI_INTEGRATIONS_ANTHROPIC_API_KEY", "fallback-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AnthropicAPIKey != "fallback-key" {
		t.Errorf("Expected fallback key picked up, got %q", cfg.AnthropicAPIKey)
	}
}

func TestValidate(t *testing.T) {
	base := func() *TaskConfig {
		return &TaskConfig{
			DriveFileIDs:      []string{"f1"},
			AnthropicAPIKey:   "key",
			GoogleCredentials: "creds",
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	noFiles := base()
	noFiles.DriveFileIDs = nil
	if err := noFiles.Validate(); err == nil {
		t.Error("Expected error without file IDs")
	}

	dbWithoutURL := base()
	dbWithoutURL.SaveToDB = true
	if err := dbWithoutURL.Validate(); err == nil {
		t.Error("Expected error when SAVE_TO_DB set without DATABASE_URL")
	}
}
