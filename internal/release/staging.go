package release

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/Masterminds/semver/v3"

	relkiterrors "relkit.dev/relkit/internal/errors"
	"relkit.dev/relkit/internal/github"
	"relkit.dev/relkit/internal/notes"
	"relkit.dev/relkit/internal/tui"
)

// mergePollInterval is how long to wait between pull request merge checks.
const mergePollInterval = 10 * time.Second

// stagedRelease is the outcome of staging a version bump on a branch: the merged
// state the publish phase continues from.
type stagedRelease struct {
	version      *semver.Version
	branchName   string
	releaseNotes *notes.ReleaseNotes
	pullRequest  *github.PullRequestInfo
}

// packageJsonMutator optionally rewrites additional package.json fields while
// the version is bumped (the exceptional-minor sentinel, for example).
type packageJsonMutator func(pkg map[string]any)

// stageVersionForBranch runs the shared staging protocol: verify CI, check out
// the branch detached, bump the version, prepend the changelog entry, commit,
// push to the caretaker's fork, open a pull request, and wait for its merge.
// compareVersion is the previously released version the notes diff against.
func (a *Action) stageVersionForBranch(ctx context.Context, newVersion, compareVersion *semver.Version, branchName string, mutate packageJsonMutator) (*stagedRelease, error) {
	if err := a.verifyPassingCI(ctx, branchName); err != nil {
		return nil, err
	}

	if err := a.checkoutUpstreamBranch(ctx, branchName); err != nil {
		return nil, err
	}

	releaseNotes, err := notes.ForRange(a.git, a.cfg, newVersion, tagNameOf(compareVersion), "HEAD")
	if err != nil {
		return nil, err
	}
	if err := releaseNotes.PromptForReleaseTitle(); err != nil {
		return nil, relkiterrors.NewUserAbortedError()
	}

	if err := a.updatePackageJsonVersion(newVersion, mutate); err != nil {
		return nil, err
	}

	entry, err := releaseNotes.ChangelogEntry()
	if err != nil {
		return nil, err
	}
	changelog := notes.NewChangelog(a.projectDir)
	if newVersion.Prerelease() == "" {
		// Finalizing a version supersedes its prerelease changelog entries.
		if err := changelog.RemovePrereleaseEntriesForVersion(newVersion); err != nil {
			return nil, err
		}
		// A new major pushes everything older than the previous major into the
		// archive, keeping the previous major's entries in CHANGELOG.md.
		if newVersion.Minor() == 0 && newVersion.Patch() == 0 && newVersion.Major() > 0 {
			threshold := semver.New(newVersion.Major()-1, 0, 0, "", "")
			if err := changelog.MoveEntriesPriorToVersionToArchive(threshold); err != nil {
				return nil, err
			}
		}
	}
	if err := changelog.PrependEntry(entry); err != nil {
		return nil, err
	}

	commitMessage := releaseCommitMessage(newVersion)
	if err := a.git.CommitAll(ctx, commitMessage); err != nil {
		return nil, err
	}
	a.splog.Info("Created release commit for v%s.", newVersion)

	pr, err := a.pushToForkAndCreatePR(ctx, fmt.Sprintf("release-stage-%s", newVersion), branchName, commitMessage)
	if err != nil {
		return nil, err
	}

	if err := a.waitForPullRequestMerge(ctx, pr); err != nil {
		return nil, err
	}

	return &stagedRelease{
		version:      newVersion,
		branchName:   branchName,
		releaseNotes: releaseNotes,
		pullRequest:  pr,
	}, nil
}

// verifyPassingCI fails fatally when the branch's CI is failing or still
// pending. Releases are never staged on top of red CI.
func (a *Action) verifyPassingCI(ctx context.Context, branchName string) error {
	a.splog.Info("Checking CI status of the %q branch.", branchName)

	branch, err := a.github.GetBranch(ctx, branchName)
	if err != nil {
		return err
	}
	status, err := a.github.GetCIStatus(ctx, branch.SHA)
	if err != nil {
		return err
	}

	if !status.Passing {
		return relkiterrors.NewFatalError("CI is failing on the %q branch. Cannot stage the release.", branchName)
	}
	if status.Pending {
		confirmed, err := confirm(fmt.Sprintf("CI on %q is still pending. Proceed anyway?", branchName), false)
		if err != nil || !confirmed {
			return relkiterrors.NewUserAbortedError()
		}
	}
	return nil
}

// checkoutUpstreamBranch fetches the branch from the upstream repository and
// checks out its head detached, so staging never depends on local branch state.
func (a *Action) checkoutUpstreamBranch(ctx context.Context, branchName string) error {
	owner, repo := a.github.GetOwnerRepo()
	upstreamURL := a.github.RepositoryGitURL(owner, repo)

	if err := a.git.FetchRef(ctx, upstreamURL, branchName); err != nil {
		return err
	}
	return a.git.Checkout(ctx, "FETCH_HEAD", false)
}

// updatePackageJsonVersion rewrites the version field of package.json, applying
// the optional extra mutation in the same write.
func (a *Action) updatePackageJsonVersion(version *semver.Version, mutate packageJsonMutator) error {
	path := filepath.Join(a.projectDir, "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read package.json: %w", err)
	}

	var pkg map[string]any
	if err := json.Unmarshal(data, &pkg); err != nil {
		return fmt.Errorf("unable to parse package.json: %w", err)
	}

	pkg["version"] = version.String()
	if mutate != nil {
		mutate(pkg)
	}

	updated, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(updated, '\n'), 0o644)
}

// pushToForkAndCreatePR pushes HEAD to the caretaker's fork and opens a pull
// request against the target branch. On a branch-name collision the push is
// retried with deterministic "_1"/"_2" suffixes before giving up.
func (a *Action) pushToForkAndCreatePR(ctx context.Context, forkBranchBase, targetBranch, title string) (*github.PullRequestInfo, error) {
	fork, err := a.github.FindOwnedFork(ctx)
	if err != nil {
		return nil, relkiterrors.NewFatalError("%v", err)
	}
	forkURL := a.github.RepositoryGitURL(fork.Owner, fork.Name)

	candidates := []string{forkBranchBase, forkBranchBase + "_1", forkBranchBase + "_2"}
	forkBranch := ""
	for _, candidate := range candidates {
		if err := a.git.Push(ctx, forkURL, "HEAD:refs/heads/"+candidate); err != nil {
			a.splog.Debug("Unable to push to fork branch %q: %v", candidate, err)
			continue
		}
		forkBranch = candidate
		break
	}
	if forkBranch == "" {
		return nil, relkiterrors.NewFatalError(
			"unable to push the staging branch to the %s/%s fork: all candidate branch names are taken",
			fork.Owner, fork.Name)
	}

	pr, err := a.github.CreatePullRequest(ctx, github.CreatePROptions{
		Title: title,
		Head:  fork.Owner + ":" + forkBranch,
		Base:  targetBranch,
		Body:  "Staged release commit. Merging this pull request continues the release.",
	})
	if err != nil {
		return nil, err
	}

	a.splog.Info("Created pull request %s", tui.ColorCyan(pr.HTMLURL))
	return pr, nil
}

// waitForPullRequestMerge prompts the caretaker to merge the staging pull
// request and polls until GitHub reports it merged. Declining aborts cleanly.
func (a *Action) waitForPullRequestMerge(ctx context.Context, pr *github.PullRequestInfo) error {
	for {
		confirmed, err := confirm(fmt.Sprintf(
			"Please merge pull request #%d (%s). Has it been merged?", pr.Number, pr.HTMLURL), true)
		if err != nil || !confirmed {
			return relkiterrors.NewUserAbortedError()
		}

		current, err := a.github.GetPullRequest(ctx, pr.Number)
		if err != nil {
			return err
		}
		if current.Merged {
			return nil
		}
		if current.State == "closed" {
			return relkiterrors.NewFatalError("pull request #%d was closed without being merged", pr.Number)
		}

		a.splog.Warn("Pull request #%d is not merged yet. Checking again shortly.", pr.Number)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(mergePollInterval):
		}
	}
}

// cherryPickChangelogIntoNext stages the released changelog entry onto the next
// branch through a follow-up pull request, keeping the main changelog complete.
func (a *Action) cherryPickChangelogIntoNext(ctx context.Context, staged *stagedRelease) error {
	nextBranch := a.trains.Next.BranchName
	a.splog.Info("Cherry-picking the changelog entry into the %q branch.", nextBranch)

	if err := a.checkoutUpstreamBranch(ctx, nextBranch); err != nil {
		return err
	}

	entry, err := staged.releaseNotes.ChangelogEntry()
	if err != nil {
		return err
	}
	if err := notes.NewChangelog(a.projectDir).PrependEntry(entry); err != nil {
		return err
	}

	message := fmt.Sprintf("docs: release notes for the v%s release", staged.version)
	if err := a.git.CommitAll(ctx, message); err != nil {
		return err
	}

	pr, err := a.pushToForkAndCreatePR(ctx,
		fmt.Sprintf("changelog-cherry-pick-%s", staged.version), nextBranch, message)
	if err != nil {
		return err
	}
	return a.waitForPullRequestMerge(ctx, pr)
}

// stageVersionBumpWithoutChangelog stages a plain version bump on a branch with
// no changelog entry and no publish, for transitions that only reconfigure a
// train (feature freeze, next-as-major, exceptional minor preparation).
func (a *Action) stageVersionBumpWithoutChangelog(ctx context.Context, newVersion *semver.Version, branchName, commitMessage string, mutate packageJsonMutator) (*stagedRelease, error) {
	if err := a.verifyPassingCI(ctx, branchName); err != nil {
		return nil, err
	}
	if err := a.checkoutUpstreamBranch(ctx, branchName); err != nil {
		return nil, err
	}
	if err := a.updatePackageJsonVersion(newVersion, mutate); err != nil {
		return nil, err
	}
	if err := a.git.CommitAll(ctx, commitMessage); err != nil {
		return nil, err
	}

	pr, err := a.pushToForkAndCreatePR(ctx, fmt.Sprintf("release-bump-%s", newVersion), branchName, commitMessage)
	if err != nil {
		return nil, err
	}
	if err := a.waitForPullRequestMerge(ctx, pr); err != nil {
		return nil, err
	}

	return &stagedRelease{version: newVersion, branchName: branchName, pullRequest: pr}, nil
}

// releaseCommitMessage is the deterministic commit message for a release cut.
func releaseCommitMessage(version *semver.Version) string {
	return fmt.Sprintf("release: cut the v%s release", version)
}

// tagNameOf returns the git tag a version was published under.
func tagNameOf(version *semver.Version) string {
	return "v" + version.String()
}

// confirm asks the caretaker a yes/no question. Interactive prompts are gated
// the same way as the bubbletea prompts so tests never block.
func confirm(message string, defaultValue bool) (bool, error) {
	if os.Getenv("RELKIT_TEST_NO_INTERACTIVE") != "" {
		return false, tui.ErrInteractiveDisabled
	}

	confirmed := defaultValue
	prompt := &survey.Confirm{Message: message, Default: defaultValue}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}
