package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"relkit.dev/relkit/internal/config"
	"relkit.dev/relkit/internal/git"
	"relkit.dev/relkit/internal/release"
)

// newReleasePrecheckCmd creates the release precheck command
func newReleasePrecheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "precheck",
		Short: "Run the configured release prechecks against a staged release",
		Long:  "Run the configured release prechecks. Expects the staged release payload (builtPackagesWithInfo, newVersion) as JSON on stdin.",
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

			payload, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("unable to read the precheck payload from stdin: %w", err)
			}

			// Validate the payload shape before handing it to the precheck command.
			var parsed struct {
				BuiltPackagesWithInfo []release.BuiltPackage `json:"builtPackagesWithInfo"`
				NewVersion            string                 `json:"newVersion"`
			}
			if err := json.Unmarshal(payload, &parsed); err != nil {
				return fmt.Errorf("invalid precheck payload: %w", err)
			}
			if parsed.NewVersion == "" {
				return fmt.Errorf("invalid precheck payload: missing newVersion")
			}

			return release.RunPrecheckCommand(cmd.Context(), cfg, repoRoot, payload)
		},
	}
}
