// Package cli provides the command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/wmc-labs/ditele-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ditele",
	Short: "Generate DiTeLe learning scenarios from Drive documents",
	Long: `ditele turns source documents from a Google Drive folder into
structured German learning scenarios (DiTeLe standard) and uploads the
assembled Word documents back to Drive.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default ~/.ditele/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
