// Package cli implements the confab CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "confab",
	Short: "Control the Confab desktop companion",
	Long: `Confab keeps your conversations one keystroke away. This CLI manages
the confabd daemon, the window it controls, and the conversations it holds.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}
