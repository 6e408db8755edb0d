package cmd

import (
	"github.com/spf13/cobra"
)

// Version information (set at build time)
var (
	appVersion    = "dev"
	appCommitHash = "unknown"
	appBuildDate  = "unknown"
)

// SetVersionInfo sets the version information from build-time variables
func SetVersionInfo(version, commitHash, buildDate string) {
	appVersion = version
	appCommitHash = commitHash
	appBuildDate = buildDate
}

// NewRootCmd creates a new instance of the root command for testing
// This prevents shared state issues in concurrent tests
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prqueue",
		Short: "Pull request review queue digest for Slack",
		Long: `prqueue inspects the open pull requests of a GitHub organisation,
classifies each one into a triage bucket and posts a review queue
digest to a Slack channel.

Examples:
  prqueue queue --org osbuild                 # digest for a whole org
  prqueue queue --org osbuild --repo images   # digest for one repo
  prqueue queue --org osbuild --dry-run       # compute but do not post
  prqueue vault keygen                        # new identity store key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newQueueCmd())
	cmd.AddCommand(newVaultCmd())
	cmd.AddCommand(versionCmd)

	return cmd
}

var rootCmd = NewRootCmd()

func Execute() error {
	return rootCmd.Execute()
}
