package cli

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"relkit.dev/relkit/internal/config"
	"relkit.dev/relkit/internal/git"
	"relkit.dev/relkit/internal/notes"
)

// newReleaseNotesCmd creates the release notes command
func newReleaseNotesCmd() *cobra.Command {
	var (
		from               string
		to                 string
		releaseVersion     string
		noteType           string
		prependToChangelog bool
	)

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Render release notes for a commit range",
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
			version, err := semver.NewVersion(releaseVersion)
			if err != nil {
				return fmt.Errorf("invalid release version %q: %w", releaseVersion, err)
			}

			releaseNotes, err := notes.ForRange(git.NewClient(repoRoot), cfg, version, from, to)
			if err != nil {
				return err
			}

			var entry string
			switch noteType {
			case "changelog":
				entry, err = releaseNotes.ChangelogEntry()
			case "github-release":
				entry, err = releaseNotes.GithubReleaseEntry()
			default:
				return fmt.Errorf("unsupported notes type %q (expected changelog or github-release)", noteType)
			}
			if err != nil {
				return err
			}

			if prependToChangelog {
				if noteType != "changelog" {
					return fmt.Errorf("--prepend-to-changelog requires --type=changelog")
				}
				if err := notes.NewChangelog(repoRoot).PrependEntry(entry); err != nil {
					return err
				}
				fmt.Printf("Prepended release notes for v%s to %s\n", version, notes.ChangelogFileName)
				return nil
			}

			fmt.Println(entry)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Ref the release notes should start from (exclusive)")
	cmd.Flags().StringVar(&to, "to", "HEAD", "Ref the release notes should end at (inclusive)")
	cmd.Flags().StringVar(&releaseVersion, "release-version", "", "Version the release notes are for")
	cmd.Flags().StringVar(&noteType, "type", "changelog", "Notes format: changelog or github-release")
	cmd.Flags().BoolVar(&prependToChangelog, "prepend-to-changelog", false, "Write the entry into CHANGELOG.md instead of printing it")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("release-version")

	return cmd
}
