package models

import (
	"encoding/json"
	"fmt"
)

// CompanyScore is the model's 0-5 assessment for a single company
type CompanyScore struct {
	Score         int      `json:"score"`
	Reasoning     string   `json:"reasoning"`
	KeyIndicators []string `json:"key_indicators"`
}

// ScoreCard holds the per-company scores plus the package-level
// assessment. On the wire the company entries sit at the top level of
// the JSON object next to overall_recommendation and package_score,
// keyed by company slug, so the type carries custom JSON codecs.
type ScoreCard struct {
	Companies             map[string]CompanyScore
	OverallRecommendation string
	PackageScore          int
}

// MarshalJSON flattens the company map into the top-level object
func (s ScoreCard) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Companies)+2)
	for slug, cs := range s.Companies {
		out[slug] = cs
	}
	out["overall_recommendation"] = s.OverallRecommendation
	out["package_score"] = s.PackageScore
	return json.Marshal(out)
}

// UnmarshalJSON splits the flat object back into company entries and
// the package-level fields. Unknown scalar fields are ignored.
func (s *ScoreCard) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Companies = make(map[string]CompanyScore)
	for key, val := range raw {
		switch key {
		case "overall_recommendation":
			if err := json.Unmarshal(val, &s.OverallRecommendation); err != nil {
				return fmt.Errorf("invalid overall_recommendation: %w", err)
			}
		case "package_score":
			if err := json.Unmarshal(val, &s.PackageScore); err != nil {
				return fmt.Errorf("invalid package_score: %w", err)
			}
		default:
			var cs CompanyScore
			if err := json.Unmarshal(val, &cs); err != nil {
				// Not a company entry; skip extra fields the model
				// may have added
				continue
			}
			s.Companies[key] = cs
		}
	}

	return nil
}

// Validate checks the scorecard covers the expected company slugs with
// scores in range
func (s *ScoreCard) Validate(expectedSlugs []string) error {
	for _, slug := range expectedSlugs {
		cs, ok := s.Companies[slug]
		if !ok {
			return fmt.Errorf("scorecard missing company %q", slug)
		}
		if cs.Score < 0 || cs.Score > 5 {
			return fmt.Errorf("company %q score %d out of range", slug, cs.Score)
		}
	}
	if s.PackageScore < 0 || s.PackageScore > 5 {
		return fmt.Errorf("package_score %d out of range", s.PackageScore)
	}
	return nil
}
