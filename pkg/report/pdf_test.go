package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
)

func TestRenderPDF(t *testing.T) {
	summary := models.JobSummary{
		TotalSheets:     12,
		SheetsWithScope: 8,
		ScopeCounts:     map[string]int{"Retaining walls": 5, "Pavers": 3},
		FilesAnalyzed:   []string{"siteplan.xlsx"},
	}
	scores := &models.ScoreCard{
		Companies: map[string]models.CompanyScore{
			"erw_retaining_walls": {Score: 4, Reasoning: "extensive wall scope"},
			"ratliff_hardscape":   {Score: 3, Reasoning: "paver courtyards"},
		},
		OverallRecommendation: "Strong wall-led opportunity.",
		PackageScore:          4,
	}

	out, err := NewPDFGenerator().Render("siteplan.xlsx", summary, scores)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output is not a PDF, starts with %q", out[:8])
	}
	if len(out) < 500 {
		t.Errorf("suspiciously small PDF: %d bytes", len(out))
	}
}

func TestRenderPDFNilScores(t *testing.T) {
	if _, err := NewPDFGenerator().Render("x.xlsx", models.JobSummary{}, nil); err == nil {
		t.Error("expected error for nil scores")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"erw_retaining_walls", "Erw Retaining Walls"},
		{"kaufman_concrete", "Kaufman Concrete"},
		{"single", "Single"},
	}
	for _, tt := range tests {
		if got := displayName(tt.slug); got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("unexpected: %q", got)
	}
	long := strings.Repeat("a", 50)
	got := truncate(long, 20)
	if len(got) != 20 {
		t.Errorf("expected 20 chars, got %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis, got %q", got)
	}
}
