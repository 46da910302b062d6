// Package cli declares the relkit command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "relkit",
		Short:         "Relkit manages multi-branch semantic-version releases",
		Long:          "Relkit manages multi-branch semantic-version releases: active release trains, legal release actions, and the staged branch/version/npm mutations for each action.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newReleaseCmd())

	return rootCmd
}
