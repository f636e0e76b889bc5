package cli

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List the source documents a run would process",
	RunE:  runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if discoverer == nil {
		if err := ensureWired(ctx); err != nil {
			return err
		}
		defer closeWiring()
	}

	files, err := discoverer.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(files) == 0 {
		cmd.Println("No source documents found.")
		return nil
	}

	cmd.Printf("%d source document(s):\n", len(files))
	for _, f := range files {
		cmd.Printf("  %s  (%s)\n", path.Join(f.Path, f.Name), f.ID)
	}
	return nil
}
