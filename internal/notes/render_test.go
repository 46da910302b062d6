package notes

import (
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"

	"relkit.dev/relkit/internal/config"
	"relkit.dev/relkit/internal/git"
)

func renderConfig() *config.ReleaseConfig {
	return &config.ReleaseConfig{
		Github:                   config.GithubConfig{Owner: "acme", Name: "widgets"},
		RepresentativeNpmPackage: "@acme/core",
		NpmPackages:              []config.NpmPackage{{Name: "@acme/core"}},
	}
}

func TestBuildDateStamp(t *testing.T) {
	t.Parallel()

	date := time.Date(1970, 11, 5, 14, 30, 0, 0, time.UTC)
	require.Equal(t, "1970-11-05", BuildDateStamp(date))

	padded := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2026-03-07", BuildDateStamp(padded))
}

func TestConvertPullRequestReferencesToLinks(t *testing.T) {
	t.Parallel()

	got := ConvertPullRequestReferencesToLinks(renderConfig(), "repair foo (#123)")
	require.Equal(t, "repair foo ([#123](https://github.com/acme/widgets/pull/123))", got)
}

func TestChangelogEntryRendering(t *testing.T) {
	t.Parallel()

	commits := []*Commit{
		ParseCommit(git.RawCommit{SHA: "aaaa111122223333", Message: "fix(core): repair foo (#123)"}),
		ParseCommit(git.RawCommit{SHA: "bbbb111122223333", Message: "feat(compiler): new engine\n\nBREAKING CHANGE: old syntax removed"}),
		ParseCommit(git.RawCommit{SHA: "cccc111122223333", Message: "docs(core): invisible docs change"}),
	}

	releaseNotes := ForCommits(renderConfig(), semver.MustParse("17.0.1"), commits)
	entry, err := releaseNotes.ChangelogEntry()
	require.NoError(t, err)

	require.Contains(t, entry, `<a name="17.0.1"></a>`)
	require.Contains(t, entry, "## Breaking Changes")
	require.Contains(t, entry, "old syntax removed")
	require.Contains(t, entry, "[#123](https://github.com/acme/widgets/pull/123)")
	require.Contains(t, entry, "[aaaa111122](https://github.com/acme/widgets/commit/aaaa111122)")
	require.NotContains(t, entry, "invisible docs change")
}

func TestGithubReleaseEntryBreakingChangesOnlyWhenPresent(t *testing.T) {
	t.Parallel()

	plain := ForCommits(renderConfig(), semver.MustParse("18.0.0"), []*Commit{
		ParseCommit(git.RawCommit{SHA: "aaaa111122223333", Message: "fix(core): small fix"}),
	})
	entry, err := plain.GithubReleaseEntry()
	require.NoError(t, err)
	require.NotContains(t, entry, "Breaking Changes")

	breaking := ForCommits(renderConfig(), semver.MustParse("18.0.0"), []*Commit{
		ParseCommit(git.RawCommit{SHA: "aaaa111122223333", Message: "feat(core): big change\n\nBREAKING CHANGE: everything is different"}),
	})
	entry, err = breaking.GithubReleaseEntry()
	require.NoError(t, err)
	require.Contains(t, entry, "Breaking Changes")
}

func TestGroupOrderOverride(t *testing.T) {
	t.Parallel()

	cfg := renderConfig()
	cfg.ReleaseNotes.GroupOrder = []string{"router", "compiler"}

	commits := []*Commit{
		ParseCommit(git.RawCommit{SHA: "a111122223333444", Message: "fix(animations): a"}),
		ParseCommit(git.RawCommit{SHA: "b111122223333444", Message: "fix(compiler): b"}),
		ParseCommit(git.RawCommit{SHA: "c111122223333444", Message: "fix(router): c"}),
	}

	groups := groupCommits(commits, cfg.ReleaseNotes.GroupOrder)
	require.Equal(t, []string{"router", "compiler", "animations"},
		[]string{groups[0].Title, groups[1].Title, groups[2].Title})
}

func TestHiddenScopesAreExcluded(t *testing.T) {
	t.Parallel()

	cfg := renderConfig()
	cfg.ReleaseNotes.HiddenScopes = []string{"internal"}

	commits := []*Commit{
		ParseCommit(git.RawCommit{SHA: "a111122223333444", Message: "fix(internal): hidden fix"}),
		ParseCommit(git.RawCommit{SHA: "b111122223333444", Message: "fix(core): visible fix"}),
	}

	releaseNotes := ForCommits(cfg, semver.MustParse("17.0.1"), commits)
	entry, err := releaseNotes.ChangelogEntry()
	require.NoError(t, err)
	require.Contains(t, entry, "visible fix")
	require.NotContains(t, entry, "hidden fix")
}
