package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driving"
)

var (
	runLimit  int
	runDryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process all source documents into scenarios",
	Long: `Discovers documents in the configured Drive folder, generates one
DiTeLe scenario per document and uploads the assembled Word files into a
timestamped output folder.

A failing document is recorded and skipped; the run continues with the
next document. With --dry-run, documents are discovered and analyzed but
nothing is generated or uploaded.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "process at most N documents (0 = all, or the configured test-mode cap)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "analyze only, skip generation and upload")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if pipelineRunner == nil {
		if err := ensureWired(ctx); err != nil {
			return err
		}
		defer closeWiring()
	}

	summary, err := pipelineRunner.Run(ctx, driving.RunOptions{
		Limit:  runLimit,
		DryRun: runDryRun,
	})
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, summary *domain.RunSummary) {
	cmd.Printf("\nRun %s finished in %s\n",
		summary.RunID, summary.Finished.Sub(summary.Started).Round(time.Second))
	cmd.Printf("Documents: %d attempted, %d succeeded, %d failed\n",
		summary.Attempted(), summary.Succeeded(), summary.Failed())
	if summary.OutputFolderID != "" {
		cmd.Printf("Output folder: %s\n", summary.OutputFolderID)
	}

	for _, result := range summary.Results {
		switch result.Status {
		case domain.StatusCompleted:
			cmd.Printf("  ok   %s -> %s (%d pairs)\n", result.Name, result.OutputName, result.PairCount)
			if len(result.Missing) > 0 {
				cmd.Printf("       missing sections: %v\n", result.Missing)
			}
		default:
			cmd.Printf("  FAIL %s at %s: %s\n", result.Name, result.Stage, result.Error)
		}
	}
}
