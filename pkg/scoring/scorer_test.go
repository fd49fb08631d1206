package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
)

func sampleSummary() models.ScopeSummary {
	return models.ScopeSummary{
		TotalSheets:          12,
		SheetsWithScope:      8,
		ScopeIndicatorCounts: map[string]int{"Retaining walls": 5, "Pavers": 3},
		SheetDetails: []models.SheetDetail{
			{Sheet: "Sheet L1.01: Site Plan", Summary: "MSE wall along north edge", Density: "High", MarkedScope: []string{"Retaining walls"}},
		},
	}
}

// messageResponse builds an Anthropic Messages API reply whose single
// text block is the given string
func messageResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"id":    "msg_test",
		"type":  "message",
		"role":  "assistant",
		"model": DefaultModel,
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": 100, "output_tokens": 50},
	}
}

const validScoreJSON = `{
    "erw_retaining_walls": {"score": 4, "reasoning": "extensive wall scope", "key_indicators": ["MSE walls"]},
    "kaufman_concrete": {"score": 2, "reasoning": "light flatwork", "key_indicators": []},
    "landtec_landscape": {"score": 3, "reasoning": "planting throughout", "key_indicators": ["sod"]},
    "ratliff_hardscape": {"score": 3, "reasoning": "paver courtyards", "key_indicators": ["pavers"]},
    "overall_recommendation": "Strong wall-led opportunity.",
    "package_score": 4
}`

func newTestScorer(t *testing.T, handler http.HandlerFunc) (*Scorer, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	scorer := NewScorer(ScorerConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Roster:  DefaultRoster(),
	})
	scorer.retryCfg.MaxRetries = 2
	scorer.retryCfg.InitialBackoff = 0
	return scorer, srv
}

func TestScorerScore(t *testing.T) {
	var gotBody map[string]interface{}
	scorer, _ := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageResponse("```json\n" + validScoreJSON + "\n```"))
	})

	card, err := scorer.Score(context.Background(), sampleSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if card.PackageScore != 4 {
		t.Errorf("expected package score 4, got %d", card.PackageScore)
	}
	if card.Companies["erw_retaining_walls"].Score != 4 {
		t.Errorf("expected erw score 4, got %d", card.Companies["erw_retaining_walls"].Score)
	}
	if !strings.Contains(card.OverallRecommendation, "wall-led") {
		t.Errorf("unexpected recommendation: %q", card.OverallRecommendation)
	}

	if gotBody["model"] != DefaultModel {
		t.Errorf("expected model %q, got %v", DefaultModel, gotBody["model"])
	}
	prompt := fmt.Sprintf("%v", gotBody["messages"])
	if !strings.Contains(prompt, "expert construction estimator") {
		t.Error("request prompt missing estimator preamble")
	}
	if !strings.Contains(prompt, "Retaining walls") {
		t.Error("request prompt missing scope indicator data")
	}
}

func TestScorerScoreUnfencedReply(t *testing.T) {
	scorer, _ := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageResponse(validScoreJSON))
	})

	card, err := scorer.Score(context.Background(), sampleSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.PackageScore != 4 {
		t.Errorf("expected package score 4, got %d", card.PackageScore)
	}
}

func TestScorerScoreMalformedReply(t *testing.T) {
	scorer, _ := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageResponse("I could not produce JSON this time."))
	})

	_, err := scorer.Score(context.Background(), sampleSummary())
	if err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
	if kind := models.KindOf(err); kind != models.KindScoreParse {
		t.Errorf("expected kind %q, got %q", models.KindScoreParse, kind)
	}
}

func TestScorerScoreMissingCompany(t *testing.T) {
	partial := `{
    "erw_retaining_walls": {"score": 4, "reasoning": "walls", "key_indicators": []},
    "overall_recommendation": "Partial.",
    "package_score": 2
}`
	scorer, _ := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageResponse(partial))
	})

	_, err := scorer.Score(context.Background(), sampleSummary())
	if err == nil {
		t.Fatal("expected validation error for missing companies")
	}
	if kind := models.KindOf(err); kind != models.KindScoreParse {
		t.Errorf("expected kind %q, got %q", models.KindScoreParse, kind)
	}
}

func TestScorerScoreAPIError(t *testing.T) {
	scorer, _ := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad request"}}`, http.StatusBadRequest)
	})

	_, err := scorer.Score(context.Background(), sampleSummary())
	if err == nil {
		t.Fatal("expected error for API failure")
	}
	if kind := models.KindOf(err); kind != models.KindScoring {
		t.Errorf("expected kind %q, got %q", models.KindScoring, kind)
	}
}

func TestScorerRetriesOverload(t *testing.T) {
	attempts := 0
	scorer, _ := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageResponse(validScoreJSON))
	})

	card, err := scorer.Score(context.Background(), sampleSummary())
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if card.PackageScore != 4 {
		t.Errorf("expected package score 4, got %d", card.PackageScore)
	}
	if attempts < 2 {
		t.Errorf("expected at least 2 attempts, got %d", attempts)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "Here you go:\n```json\n{\"a\": 1}\n```\nDone.", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"unterminated fence", "```json\n{\"a\": 1}", `{"a": 1}`},
		{"surrounding whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.input); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleSummary(), DefaultRoster())

	for _, want := range []string{
		"expert construction estimator",
		"**Total sheets analyzed:** 12",
		"**Sheets with identifiable scope:** 8",
		"ERW Retaining Walls",
		"Kaufman Concrete",
		"Landtec Landscape",
		"Ratliff Hardscape",
		`"erw_retaining_walls"`,
		`"package_score"`,
		"ONLY a JSON object",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
