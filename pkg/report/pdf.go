package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
)

// PDFGenerator renders a one-page scoring report
type PDFGenerator struct{}

// NewPDFGenerator creates a PDF generator
func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{}
}

// Render produces the scoring report PDF for one finished job
func (g *PDFGenerator) Render(filename string, summary models.JobSummary, scores *models.ScoreCard) ([]byte, error) {
	if scores == nil {
		return nil, fmt.Errorf("no scores to render")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Scope Scoring Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("File: %s", filename))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04 MST")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Sheets analyzed: %d (%d with scope)", summary.TotalSheets, summary.SheetsWithScope))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Package Score: %d / 5", scores.PackageScore))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, scores.OverallRecommendation, "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Company Scores")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(55, 7, "Company", "1", 0, "L", true, 0, "")
	pdf.CellFormat(15, 7, "Score", "1", 0, "C", true, 0, "")
	pdf.CellFormat(110, 7, "Reasoning", "1", 1, "L", true, 0, "")

	slugs := make([]string, 0, len(scores.Companies))
	for slug := range scores.Companies {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	pdf.SetFont("Helvetica", "", 9)
	for _, slug := range slugs {
		cs := scores.Companies[slug]
		pdf.CellFormat(55, 7, displayName(slug), "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", cs.Score), "1", 0, "C", false, 0, "")
		pdf.CellFormat(110, 7, truncate(cs.Reasoning, 95), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	if len(summary.ScopeCounts) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Scope Indicators")
		pdf.Ln(9)

		indicators := make([]string, 0, len(summary.ScopeCounts))
		for name := range summary.ScopeCounts {
			indicators = append(indicators, name)
		}
		sort.Strings(indicators)

		pdf.SetFont("Helvetica", "", 9)
		for _, name := range indicators {
			pdf.Cell(0, 5, fmt.Sprintf("%s: %d sheets", name, summary.ScopeCounts[name]))
			pdf.Ln(5)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate caps s at n runes for single-row table cells
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// displayName turns a company slug into a readable title
func displayName(slug string) string {
	words := strings.Split(slug, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
