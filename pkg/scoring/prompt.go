package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
)

// BuildPrompt renders the scoring prompt for one scope summary. The
// structure is load-bearing: the model is instructed to answer with a
// bare JSON object keyed by the roster's company slugs.
func BuildPrompt(summary models.ScopeSummary, roster Roster) string {
	counts, _ := json.MarshalIndent(summary.ScopeIndicatorCounts, "", "  ")
	details, _ := json.MarshalIndent(summary.SheetDetails, "", "  ")

	var b strings.Builder

	fmt.Fprintf(&b, `You are an expert construction estimator familiar with ERW Site Solutions, a Texas-based exterior improvements contractor. Analyze this scope extractor output and score the job for each of their %d companies.

## Scope Data Summary

**Total sheets analyzed:** %d
**Sheets with identifiable scope:** %d

**Scope indicator counts across all sheets:**
%s

**Detailed sheet-by-sheet scope (showing sheets with marked scope items):**
%s

## Scoring Instructions

Score each company from 0-5 based on:
- **0**: No meaningful scope for this company
- **1**: Minimal scope, clearly under $250k, only useful to complete a package
- **2**: Light scope, borderline viability ($100-250k range)
- **3**: Decent scope, likely meets $250k threshold, worth pursuing
- **4**: Strong scope, clearly exceeds $250k, high priority
- **5**: Excellent scope, major opportunity ($500k+), top tier

## Company Scope Mapping

`, len(roster.Companies), summary.TotalSheets, summary.SheetsWithScope, counts, details)

	for _, c := range roster.Companies {
		indicators := make([]string, len(c.Indicators))
		for i, ind := range c.Indicators {
			indicators[i] = "`" + ind + "`"
		}
		fmt.Fprintf(&b, "**%s**: Look for %s indicators and mentions of %s in summaries.\n\n",
			c.Name, strings.Join(indicators, ", "), c.Mentions)
	}

	b.WriteString(`## Important Considerations

1. **Sheet count matters**: More sheets with scope = larger project
2. **Density ratings**: "High" density sheets have more work than "Low" density
3. **Cross-reference summaries**: The scope_summary often contains details not captured in indicator columns
4. **Package value**: Even if one company has low scope, it might still be valuable to complete a turnkey package

Respond with ONLY a JSON object in this exact format:
{
`)

	for _, c := range roster.Companies {
		fmt.Fprintf(&b, `    "%s": {
        "score": <0-5>,
        "reasoning": "<brief explanation of score>",
        "key_indicators": ["<specific items found>"]
    },
`, c.Slug)
	}

	b.WriteString(`    "overall_recommendation": "<1-2 sentence summary of opportunity>",
    "package_score": <0-5 overall attractiveness as turnkey package>
}`)

	return b.String()
}
