// Package cli implements the offline insight tool: the same engine the API
// serves, run once over a local CSV export for ops spot-checks.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
}

// NewRootCommand creates the root command for the insight CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Offline attendance analysis",
		Long:  "Analyze a punch CSV export locally, without running the API service.",
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "optional .env file with engine thresholds")

	cmd.AddCommand(NewAnalyzeCommand(opts))

	return cmd
}
