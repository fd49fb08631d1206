package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/report"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/scoring"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/store"
)

var (
	// Score flags
	saveResult    bool
	pdfOutput     string
	companiesFile string
	modelName     string
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <spreadsheet.xlsx> [more.xlsx...]",
	Short: "Score local scope spreadsheets",
	Long:  `Score one or more scope extractor spreadsheets from the local filesystem. Multiple files are combined into a single job before scoring.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().BoolVar(&saveResult, "save", false, "save the result to the local results database")
	scoreCmd.Flags().StringVar(&pdfOutput, "pdf", "", "write a PDF report to this path")
	scoreCmd.Flags().StringVar(&companiesFile, "companies", "", "YAML roster override (default built-in companies)")
	scoreCmd.Flags().StringVar(&modelName, "model", "", "Claude model override")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	if apiKey == "" {
		return fmt.Errorf("no API key configured; set ANTHROPIC_API_KEY")
	}

	roster, err := scoring.LoadRoster(companiesFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Now()

	var (
		summaries []models.ScopeSummary
		filenames []string
	)
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		rows, err := scoring.ParseWorkbook(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		summary := scoring.PrepareScopeSummary(rows)
		fmt.Printf("Parsed %s: %d sheets, %d with scope\n", filepath.Base(path), summary.TotalSheets, summary.SheetsWithScope)

		summaries = append(summaries, summary)
		filenames = append(filenames, filepath.Base(path))
	}

	combined := summaries[0]
	if len(summaries) > 1 {
		combined = scoring.CombineScopeData(summaries)
	}

	scorer := scoring.NewScorer(scoring.ScorerConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
		Roster:  roster,
	})

	fmt.Println("Scoring with Claude...")
	scores, err := scorer.Score(ctx, combined)
	if err != nil {
		return err
	}

	jobID := uuid.New().String()[:8]
	displayName := filenames[0]
	if len(filenames) > 1 {
		displayName = fmt.Sprintf("%d files: %s", len(filenames), strings.Join(filenames, ", "))
	}

	if outputFormat == "json" {
		result := models.JobResult{
			Status:                models.StatusCompleted,
			JobID:                 jobID,
			Filename:              displayName,
			FilesAnalyzed:         filenames,
			AnalyzedAt:            time.Now().UTC(),
			Summary:               summaryFrom(combined, filenames),
			Scores:                scores,
			ProcessingTimeSeconds: time.Since(start).Seconds(),
		}
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
	} else {
		printScoreTable(jobID, displayName, combined, scores)
	}

	if saveResult {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		st, err := store.NewStore(path)
		if err != nil {
			return fmt.Errorf("failed to open results database: %w", err)
		}
		defer st.Close()

		if err := st.SaveJobResult(ctx, jobID, displayName, time.Now().UTC(), summaryFrom(combined, filenames), scores); err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
		fmt.Printf("Saved result %s to %s\n", jobID, path)
	}

	if pdfOutput != "" {
		pdfBytes, err := report.NewPDFGenerator().Render(displayName, summaryFrom(combined, filenames), scores)
		if err != nil {
			return fmt.Errorf("failed to render PDF: %w", err)
		}
		if err := os.WriteFile(pdfOutput, pdfBytes, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", pdfOutput, err)
		}
		fmt.Printf("Wrote PDF report to %s\n", pdfOutput)
	}

	return nil
}

func summaryFrom(combined models.ScopeSummary, filenames []string) models.JobSummary {
	return models.JobSummary{
		TotalSheets:     combined.TotalSheets,
		SheetsWithScope: combined.SheetsWithScope,
		ScopeCounts:     combined.ScopeIndicatorCounts,
		FilesAnalyzed:   filenames,
	}
}

func printScoreTable(jobID, filename string, combined models.ScopeSummary, scores *models.ScoreCard) {
	fmt.Printf("\nJob %s: %s\n", jobID, filename)
	fmt.Printf("Sheets: %d analyzed, %d with scope\n\n", combined.TotalSheets, combined.SheetsWithScope)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Company", "Score", "Reasoning")

	slugs := make([]string, 0, len(scores.Companies))
	for slug := range scores.Companies {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		cs := scores.Companies[slug]
		table.Append(slug, fmt.Sprintf("%d", cs.Score), cs.Reasoning)
	}
	table.Render()

	fmt.Printf("\nPackage score: %d/5\n", scores.PackageScore)
	fmt.Printf("Recommendation: %s\n", scores.OverallRecommendation)
}
