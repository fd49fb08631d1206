package scoring

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRoster(t *testing.T) {
	roster := DefaultRoster()
	if len(roster.Companies) != 4 {
		t.Fatalf("expected 4 companies, got %d", len(roster.Companies))
	}

	slugs := roster.Slugs()
	want := []string{"erw_retaining_walls", "kaufman_concrete", "landtec_landscape", "ratliff_hardscape"}
	for i, slug := range want {
		if slugs[i] != slug {
			t.Errorf("slug %d: expected %q, got %q", i, slug, slugs[i])
		}
	}

	for _, c := range roster.Companies {
		if len(c.Indicators) == 0 {
			t.Errorf("company %s has no indicators", c.Slug)
		}
		if c.Mentions == "" {
			t.Errorf("company %s has no mentions", c.Slug)
		}
	}
}

func TestLoadRosterEmptyPath(t *testing.T) {
	roster, err := LoadRoster("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roster.Companies) != 4 {
		t.Errorf("expected default roster, got %d companies", len(roster.Companies))
	}
}

func TestLoadRosterFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	content := `companies:
  - slug: acme_paving
    name: Acme Paving
    indicators:
      - Pavers
    mentions: asphalt, chip seal
  - slug: acme_walls
    name: Acme Walls
    indicators:
      - Retaining walls
    mentions: block walls
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write roster file: %v", err)
	}

	roster, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roster.Companies) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(roster.Companies))
	}
	if roster.Companies[0].Slug != "acme_paving" || roster.Companies[0].Name != "Acme Paving" {
		t.Errorf("unexpected first company: %+v", roster.Companies[0])
	}
	if roster.Companies[1].Indicators[0] != "Retaining walls" {
		t.Errorf("unexpected indicators: %v", roster.Companies[1].Indicators)
	}
}

func TestLoadRosterErrors(t *testing.T) {
	if _, err := LoadRoster(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, []byte("companies: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRoster(empty); err == nil {
		t.Error("expected error for empty roster")
	}

	noSlug := filepath.Join(t.TempDir(), "noslug.yaml")
	if err := os.WriteFile(noSlug, []byte("companies:\n  - name: Nameless\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRoster(noSlug); err == nil {
		t.Error("expected error for company without slug")
	}
}
