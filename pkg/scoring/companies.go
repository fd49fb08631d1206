package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Company describes one operating company the model scores against
type Company struct {
	Slug       string   `yaml:"slug"`       // JSON key in the scorecard, e.g. erw_retaining_walls
	Name       string   `yaml:"name"`       // Display name
	Indicators []string `yaml:"indicators"` // Scope indicator columns that map to this company
	Mentions   string   `yaml:"mentions"`   // Free-text cues to look for in sheet summaries
}

// Roster is the set of companies a scoring run evaluates
type Roster struct {
	Companies []Company `yaml:"companies"`
}

// DefaultRoster returns the four ERW Site Solutions companies
func DefaultRoster() Roster {
	return Roster{Companies: []Company{
		{
			Slug:       "erw_retaining_walls",
			Name:       "ERW Retaining Walls",
			Indicators: []string{"Retaining walls"},
			Mentions:   "MSE walls, gravity walls, boulder walls, grade changes, tiered walls, structural walls",
		},
		{
			Slug:       "kaufman_concrete",
			Name:       "Kaufman Concrete",
			Indicators: []string{"Concrete flatwork"},
			Mentions:   "sidewalks, curb/gutter, concrete paving, driveways, ADA ramps, concrete steps, reinforced concrete",
		},
		{
			Slug:       "landtec_landscape",
			Name:       "Landtec Landscape",
			Indicators: []string{"Softscape (landscape planting)", "Irrigation", "Synthetic turf"},
			Mentions:   "trees, shrubs, sod, planting, mulch, irrigation systems",
		},
		{
			Slug:       "ratliff_hardscape",
			Name:       "Ratliff Hardscape",
			Indicators: []string{"Pavers", "Aggregates / gravel", "Furnishings"},
			Mentions:   "pavers, stone, decomposed granite, site furnishings, benches, water features, pools, outdoor amenities, pavilions, playground equipment",
		},
	}}
}

// LoadRoster reads a roster from a YAML file. An empty path returns
// the default roster.
func LoadRoster(path string) (Roster, error) {
	if path == "" {
		return DefaultRoster(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("failed to read roster file %s: %w", path, err)
	}

	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return Roster{}, fmt.Errorf("failed to parse roster file %s: %w", path, err)
	}
	if len(roster.Companies) == 0 {
		return Roster{}, fmt.Errorf("roster file %s defines no companies", path)
	}
	for i, c := range roster.Companies {
		if c.Slug == "" || c.Name == "" {
			return Roster{}, fmt.Errorf("roster company %d missing slug or name", i)
		}
	}

	return roster, nil
}

// Slugs returns the company slugs in roster order
func (r Roster) Slugs() []string {
	slugs := make([]string, len(r.Companies))
	for i, c := range r.Companies {
		slugs[i] = c.Slug
	}
	return slugs
}
