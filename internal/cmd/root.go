// Package cmd implements the stoker CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "stoker",
	Short: "Development-mode supervisor for cargo projects",
	Long: `Stoker runs your app in development mode and keeps it running.

It watches the project's source tree (including every workspace member),
restarts the app when sources change, and reloads configuration in place
when stoker.toml changes, without tearing the app down.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
