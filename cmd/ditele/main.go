// Command ditele generates DiTeLe learning scenarios from Google Drive
// source documents.
package main

import (
	"os"

	"github.com/wmc-labs/ditele-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
