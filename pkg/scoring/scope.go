package scoring

import (
	"fmt"
	"strings"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
)

// columnMapping normalizes spreadsheet headers to canonical names
var columnMapping = map[string]string{
	"Page":              "pdf_page",
	"Sheet Number":      "sheet_number",
	"Title":             "title",
	"Scale":             "scale",
	"Scope Summary":     "scope_summary",
	"Density":           "density",
	"Est. Takeoff Time": "estimated_takeoff_time",
}

// ScopeIndicators are the scope extractor's marker columns. A
// non-empty cell in one of these flags that sheet for that trade.
var ScopeIndicators = []string{
	"Aggregates / gravel",
	"Concrete flatwork",
	"Fencing",
	"Furnishings",
	"Irrigation",
	"Pavers",
	"Retaining walls",
	"Softscape (landscape planting)",
	"Synthetic turf",
	"Drainage",
	"Lighting",
	"BMP / Environmental / Bioswales",
}

// NormalizeColumns rewrites known headers to canonical names, leaving
// unknown columns (including the scope indicators) untouched
func NormalizeColumns(headers []string) []string {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		if canonical, ok := columnMapping[h]; ok {
			normalized[i] = canonical
		} else {
			normalized[i] = h
		}
	}
	return normalized
}

// PrepareScopeSummary extracts the fixed-shape scope summary from
// spreadsheet rows. The first row is the header; the rest are sheets.
func PrepareScopeSummary(rows [][]string) models.ScopeSummary {
	summary := models.ScopeSummary{
		ScopeIndicatorCounts: make(map[string]int),
	}
	if len(rows) == 0 {
		return summary
	}

	headers := NormalizeColumns(rows[0])
	colIdx := make(map[string]int, len(headers))
	for i, h := range headers {
		colIdx[h] = i
	}

	var indicatorCols []string
	for _, indicator := range ScopeIndicators {
		if _, ok := colIdx[indicator]; ok {
			indicatorCols = append(indicatorCols, indicator)
		}
	}

	sheets := rows[1:]
	summary.TotalSheets = len(sheets)

	for _, row := range sheets {
		var marked []string
		for _, indicator := range indicatorCols {
			if cell(row, colIdx[indicator]) != "" {
				marked = append(marked, indicator)
				summary.ScopeIndicatorCounts[indicator]++
			}
		}
		if len(marked) == 0 {
			continue
		}

		summary.SheetsWithScope++
		if len(summary.SheetDetails) < models.MaxSheetDetails {
			summary.SheetDetails = append(summary.SheetDetails, models.SheetDetail{
				Sheet:       fmt.Sprintf("Sheet %s: %s", cellOr(row, colIdx, "sheet_number", "N/A"), cellOr(row, colIdx, "title", "N/A")),
				Summary:     cellOr(row, colIdx, "scope_summary", ""),
				Density:     cellOr(row, colIdx, "density", ""),
				MarkedScope: marked,
			})
		}
	}

	return summary
}

// CombineScopeData merges summaries from multiple files into one
func CombineScopeData(summaries []models.ScopeSummary) models.ScopeSummary {
	combined := models.ScopeSummary{
		ScopeIndicatorCounts: make(map[string]int),
	}

	for _, s := range summaries {
		combined.TotalSheets += s.TotalSheets
		combined.SheetsWithScope += s.SheetsWithScope
		for indicator, count := range s.ScopeIndicatorCounts {
			combined.ScopeIndicatorCounts[indicator] += count
		}
		combined.SheetDetails = append(combined.SheetDetails, s.SheetDetails...)
	}

	if len(combined.SheetDetails) > models.MaxSheetDetails {
		combined.SheetDetails = combined.SheetDetails[:models.MaxSheetDetails]
	}

	return combined
}

// cell returns the trimmed value at idx, or "" when the row is short
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// cellOr looks up a named column with a fallback for missing or empty
func cellOr(row []string, colIdx map[string]int, name, fallback string) string {
	idx, ok := colIdx[name]
	if !ok {
		return fallback
	}
	if v := cell(row, idx); v != "" {
		return v
	}
	return fallback
}
