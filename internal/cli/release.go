package cli

import (
	"github.com/spf13/cobra"
)

// newReleaseCmd groups the release subcommands.
func newReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Manage release trains and cut releases",
	}

	cmd.AddCommand(newReleasePublishCmd())
	cmd.AddCommand(newReleaseBuildCmd())
	cmd.AddCommand(newReleaseInfoCmd())
	cmd.AddCommand(newReleaseNotesCmd())
	cmd.AddCommand(newReleaseNpmDistTagCmd())
	cmd.AddCommand(newReleasePrecheckCmd())

	return cmd
}
