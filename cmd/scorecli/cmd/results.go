package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/store"
)

var listLimit int

// resultsCmd represents the results command
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Browse stored scoring results",
	Long:  `Commands for listing and inspecting scoring results saved in the results database.`,
}

// resultsListCmd represents the results list command
var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent results",
	RunE:  runResultsList,
}

// resultsGetCmd represents the results get command
var resultsGetCmd = &cobra.Command{
	Use:   "get <job-id>",
	Short: "Show one result in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsGet,
}

func init() {
	resultsListCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum number of results to list")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsGetCmd)
	rootCmd.AddCommand(resultsCmd)
}

func openStore() (store.Store, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	return store.NewStore(path)
}

func runResultsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListJobResults(context.Background(), listLimit)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		output, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No results stored")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Job ID", "File", "Analyzed", "Sheets", "Package")

	for _, r := range records {
		pkg := "-"
		if r.Scores != nil {
			pkg = fmt.Sprintf("%d/5", r.Scores.PackageScore)
		}
		table.Append(
			r.JobID,
			r.Filename,
			r.AnalyzedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d (%d scoped)", r.Summary.TotalSheets, r.Summary.SheetsWithScope),
			pkg,
		)
	}
	table.Render()

	return nil
}

func runResultsGet(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	record, err := st.GetJobResult(context.Background(), args[0])
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(output))

	return nil
}
