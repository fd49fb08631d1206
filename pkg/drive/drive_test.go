package drive

import (
	"encoding/base64"
	"strings"
	"testing"
)

const sampleCreds = `{"type": "service_account", "project_id": "scope-scoring"}`

func TestDecodeCredentialsRawJSON(t *testing.T) {
	got, err := DecodeCredentials(sampleCreds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != sampleCreds {
		t.Errorf("raw JSON should pass through, got %q", got)
	}
}

func TestDecodeCredentialsBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(sampleCreds))
	got, err := DecodeCredentials(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != sampleCreds {
		t.Errorf("expected decoded JSON, got %q", got)
	}
}

func TestDecodeCredentialsWhitespace(t *testing.T) {
	got, err := DecodeCredentials("  \n" + sampleCreds + "\n  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != sampleCreds {
		t.Errorf("expected trimmed JSON, got %q", got)
	}
}

func TestDecodeCredentialsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"not base64", "!!!not-valid!!!"},
		{"base64 of non-JSON", base64.StdEncoding.EncodeToString([]byte("hello world"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeCredentials(tt.input); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestDecodeCredentialsBase64Padding(t *testing.T) {
	// Some injection paths add trailing newlines inside the base64
	// block itself
	encoded := base64.StdEncoding.EncodeToString([]byte(sampleCreds)) + "\n"
	got, err := DecodeCredentials(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(got), "{") {
		t.Errorf("expected JSON output, got %q", got)
	}
}
