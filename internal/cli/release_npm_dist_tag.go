package cli

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"relkit.dev/relkit/internal/config"
	"relkit.dev/relkit/internal/git"
	"relkit.dev/relkit/internal/npm"
	"relkit.dev/relkit/internal/versioning"
)

// newReleaseNpmDistTagCmd creates the release npm-dist-tag command group
func newReleaseNpmDistTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "npm-dist-tag",
		Short: "Manage npm dist-tags for all configured release packages",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <tag> <version>",
		Short: "Point a dist-tag at a version for every configured package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tagName := args[0]
			version, err := semver.NewVersion(args[1])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[1], err)
			}

			return forEachConfiguredPackage(func(cfg *config.ReleaseConfig, client *npm.Client, pkg config.NpmPackage) error {
				target := version
				if pkg.Experimental {
					experimental, err := versioning.ComputeExperimentalVersion(version)
					if err != nil {
						return err
					}
					target = experimental
				}
				if err := client.SetDistTagForPackage(cmd.Context(), pkg.Name, tagName, target.String(), cfg.Registry()); err != nil {
					return err
				}
				fmt.Printf("Set %q for %s to v%s\n", tagName, pkg.Name, target)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <tag>",
		Short: "Remove a dist-tag from every configured package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tagName := args[0]

			return forEachConfiguredPackage(func(cfg *config.ReleaseConfig, client *npm.Client, pkg config.NpmPackage) error {
				if err := client.DeleteDistTagForPackage(cmd.Context(), pkg.Name, tagName, cfg.Registry()); err != nil {
					return err
				}
				fmt.Printf("Removed %q from %s\n", tagName, pkg.Name)
				return nil
			})
		},
	})

	return cmd
}

// forEachConfiguredPackage loads the release config and applies fn to every
// configured npm package.
func forEachConfiguredPackage(fn func(*config.ReleaseConfig, *npm.Client, config.NpmPackage) error) error {
	repoRoot, err := git.NewClient(".").RepoRoot()
	if err != nil {
		return fmt.Errorf("not a git repository: %w", err)
	}
	cfg, err := config.Load(repoRoot)
	if err != nil {
		return err
	}

	client := npm.NewClient(repoRoot)
	for _, pkg := range cfg.NpmPackages {
		if err := fn(cfg, client, pkg); err != nil {
			return err
		}
	}
	return nil
}
