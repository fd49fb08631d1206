package models

// SheetDetail describes one drawing sheet that has at least one marked
// scope indicator
type SheetDetail struct {
	Sheet       string   `json:"sheet"`
	Summary     string   `json:"summary"`
	Density     string   `json:"density"`
	MarkedScope []string `json:"marked_scope"`
}

// ScopeSummary is the fixed-shape summary extracted from a scope
// extractor spreadsheet. It is the input to the scoring prompt.
type ScopeSummary struct {
	TotalSheets          int            `json:"total_sheets"`
	SheetsWithScope      int            `json:"sheets_with_scope"`
	ScopeIndicatorCounts map[string]int `json:"scope_indicator_counts"`
	SheetDetails         []SheetDetail  `json:"sheet_details"`
}

// MaxSheetDetails caps how many per-sheet entries are carried into the
// prompt so the payload stays bounded regardless of drawing set size
const MaxSheetDetails = 50
