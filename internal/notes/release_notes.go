package notes

import (
	"time"

	"github.com/Masterminds/semver/v3"

	"relkit.dev/relkit/internal/config"
	"relkit.dev/relkit/internal/git"
	"relkit.dev/relkit/internal/tui"
)

// ReleaseNotes renders the de-duplicated commits of a release into the GitHub
// release body and changelog entry formats.
type ReleaseNotes struct {
	Version *semver.Version

	cfg     *config.ReleaseConfig
	commits []*Commit
	title   string
	date    time.Time
}

// ForRange collects the commits unique to headRef relative to baseRef and
// prepares release notes for the given version.
func ForRange(gitClient *git.Client, cfg *config.ReleaseConfig, version *semver.Version, baseRef, headRef string) (*ReleaseNotes, error) {
	commits, err := CommitsForRangeWithDeduping(gitClient, baseRef, headRef)
	if err != nil {
		return nil, err
	}
	return &ReleaseNotes{
		Version: version,
		cfg:     cfg,
		commits: commits,
		date:    time.Now(),
	}, nil
}

// ForCommits prepares release notes from an already-collected commit list.
func ForCommits(cfg *config.ReleaseConfig, version *semver.Version, commits []*Commit) *ReleaseNotes {
	return &ReleaseNotes{Version: version, cfg: cfg, commits: commits, date: time.Now()}
}

// Commits returns the commits included in the notes.
func (n *ReleaseNotes) Commits() []*Commit {
	return n.commits
}

// PromptForReleaseTitle asks the caretaker for a release title when the project
// renders titles in its notes. Without that setting this is a no-op.
func (n *ReleaseNotes) PromptForReleaseTitle() error {
	if !n.cfg.ReleaseNotes.UseReleaseTitle || n.title != "" {
		return nil
	}
	title, err := tui.PromptTextInput("Please provide a title for the release:", "")
	if err != nil {
		return err
	}
	n.title = title
	return nil
}

// GithubReleaseEntry renders the notes as a GitHub Release body.
func (n *ReleaseNotes) GithubReleaseEntry() (string, error) {
	ctx := newRenderContext(n.cfg, n.Version, n.title, n.commits, n.date)
	return ctx.render("github-release", githubReleaseTemplate, func(text string) string {
		return ConvertPullRequestReferencesToLinks(n.cfg, text)
	})
}

// ChangelogEntry renders the notes as a CHANGELOG.md entry.
func (n *ReleaseNotes) ChangelogEntry() (string, error) {
	ctx := newRenderContext(n.cfg, n.Version, n.title, n.commits, n.date)
	return ctx.render("changelog", changelogTemplate, func(text string) string {
		return ConvertPullRequestReferencesToLinks(n.cfg, text)
	})
}
