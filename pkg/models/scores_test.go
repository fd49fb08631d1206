package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestScoreCardUnmarshalFlatObject(t *testing.T) {
	payload := `{
		"erw_retaining_walls": {"score": 4, "reasoning": "walls", "key_indicators": ["MSE walls"]},
		"kaufman_concrete": {"score": 2, "reasoning": "flatwork", "key_indicators": []},
		"overall_recommendation": "Pursue.",
		"package_score": 4,
		"confidence": "high"
	}`

	var card ScoreCard
	if err := json.Unmarshal([]byte(payload), &card); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(card.Companies) != 2 {
		t.Errorf("expected 2 companies, got %d", len(card.Companies))
	}
	if card.Companies["erw_retaining_walls"].Score != 4 {
		t.Errorf("unexpected score: %+v", card.Companies["erw_retaining_walls"])
	}
	if card.Companies["erw_retaining_walls"].KeyIndicators[0] != "MSE walls" {
		t.Errorf("unexpected indicators: %v", card.Companies["erw_retaining_walls"].KeyIndicators)
	}
	if card.OverallRecommendation != "Pursue." {
		t.Errorf("unexpected recommendation: %q", card.OverallRecommendation)
	}
	if card.PackageScore != 4 {
		t.Errorf("unexpected package score: %d", card.PackageScore)
	}
}

func TestScoreCardMarshalFlattensCompanies(t *testing.T) {
	card := ScoreCard{
		Companies: map[string]CompanyScore{
			"erw_retaining_walls": {Score: 4, Reasoning: "walls"},
		},
		OverallRecommendation: "Pursue.",
		PackageScore:          4,
	}

	data, err := json.Marshal(card)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("output is not an object: %v", err)
	}
	for _, key := range []string{"erw_retaining_walls", "overall_recommendation", "package_score"} {
		if _, ok := flat[key]; !ok {
			t.Errorf("output missing top-level key %q", key)
		}
	}
	if _, ok := flat["companies"]; ok {
		t.Error("companies must not appear as a nested key")
	}
}

func TestScoreCardValidate(t *testing.T) {
	slugs := []string{"erw_retaining_walls", "kaufman_concrete"}

	card := &ScoreCard{
		Companies: map[string]CompanyScore{
			"erw_retaining_walls": {Score: 4},
			"kaufman_concrete":    {Score: 0},
		},
		PackageScore: 3,
	}
	if err := card.Validate(slugs); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	missing := &ScoreCard{
		Companies:    map[string]CompanyScore{"erw_retaining_walls": {Score: 4}},
		PackageScore: 3,
	}
	if err := missing.Validate(slugs); err == nil {
		t.Error("expected error for missing company")
	}

	outOfRange := &ScoreCard{
		Companies: map[string]CompanyScore{
			"erw_retaining_walls": {Score: 9},
			"kaufman_concrete":    {Score: 1},
		},
		PackageScore: 3,
	}
	if err := outOfRange.Validate(slugs); err == nil {
		t.Error("expected error for out-of-range score")
	}

	badPackage := &ScoreCard{
		Companies: map[string]CompanyScore{
			"erw_retaining_walls": {Score: 4},
			"kaufman_concrete":    {Score: 1},
		},
		PackageScore: 6,
	}
	if err := badPackage.Validate(slugs); err == nil {
		t.Error("expected error for out-of-range package score")
	}
}

func TestWorkErrorKindOf(t *testing.T) {
	base := NewWorkError(KindDriveDownload, errors.New("timeout"))
	if KindOf(base) != KindDriveDownload {
		t.Errorf("expected %q, got %q", KindDriveDownload, KindOf(base))
	}

	wrapped := fmt.Errorf("outer context: %w", base)
	if KindOf(wrapped) != KindDriveDownload {
		t.Errorf("kind should survive wrapping, got %q", KindOf(wrapped))
	}

	if KindOf(errors.New("plain")) != KindWorkFailed {
		t.Errorf("unclassified errors default to %q", KindWorkFailed)
	}

	if !strings.Contains(base.Error(), "timeout") {
		t.Errorf("error text lost the cause: %q", base.Error())
	}
}
