// Command scorecli scores local drawing spreadsheets and browses
// stored results without going through the batch pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/Takeoff-Monkey/Scope-Scoring/cmd/scorecli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
