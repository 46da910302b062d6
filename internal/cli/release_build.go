package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"relkit.dev/relkit/internal/config"
	"relkit.dev/relkit/internal/git"
	"relkit.dev/relkit/internal/release"
)

// newReleaseBuildCmd creates the release build command
func newReleaseBuildCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the release packages for the currently checked-out revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repoRoot, err := git.NewClient(".").RepoRoot()
			if err != nil {
				return fmt.Errorf("not a git repository: %w", err)
			}
			cfg, err := config.Load(repoRoot)
			if err != nil {
				return err
			}

			packages, err := release.RunBuildCommand(cmd.Context(), cfg, repoRoot)
			if err != nil {
				return err
			}

			if jsonOutput {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(packages)
			}

			for _, pkg := range packages {
				suffix := ""
				if pkg.Experimental {
					suffix = " (experimental)"
				}
				fmt.Printf("%s%s\n  %s\n", pkg.Name, suffix, pkg.OutputPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the built package list as JSON")

	return cmd
}
