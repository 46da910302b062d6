package release

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	relkiterrors "relkit.dev/relkit/internal/errors"
	"relkit.dev/relkit/internal/github"
	"relkit.dev/relkit/internal/tui"
	"relkit.dev/relkit/internal/versioning"
)

// publish runs the publish protocol against a staged and merged release: build,
// verify artifact versions, run prechecks, publish each package to npm under
// the dist-tag, tag the release, and create the GitHub Release entry.
func (a *Action) publish(ctx context.Context, staged *stagedRelease, npmDistTag string) error {
	branch, err := a.github.GetBranch(ctx, staged.branchName)
	if err != nil {
		return err
	}
	if err := a.checkoutUpstreamBranch(ctx, staged.branchName); err != nil {
		return err
	}

	if err := a.verifyStagedVersionOnDisk(staged.version); err != nil {
		return err
	}

	if err := a.external.InvokeYarnInstall(ctx); err != nil {
		a.splog.Warn("Dependency install failed: %v", err)
	}

	built, err := a.external.InvokeReleaseBuild(ctx)
	if err != nil {
		return err
	}
	if err := a.verifyBuiltPackageVersions(staged.version, built); err != nil {
		return err
	}

	if err := a.external.InvokeReleasePrecheck(ctx, staged.version, built); err != nil {
		return err
	}

	confirmed, err := confirm(fmt.Sprintf(
		"Publish v%s to the %q npm dist-tag?", staged.version, npmDistTag), true)
	if err != nil || !confirmed {
		return relkiterrors.NewUserAbortedError()
	}

	tagName := tagNameOf(staged.version)
	owner, repo := a.github.GetOwnerRepo()
	upstreamURL := a.github.RepositoryGitURL(owner, repo)

	if err := a.git.CreateTag(ctx, tagName, branch.SHA); err != nil {
		return err
	}
	if err := a.git.Push(ctx, upstreamURL, "refs/tags/"+tagName); err != nil {
		return err
	}
	a.splog.Info("Tagged %s.", tui.ColorVersion(tagName))

	registry := a.cfg.Registry()
	for _, pkg := range built {
		a.splog.Info("Publishing %s.", pkg.Name)
		if err := a.npm.Publish(ctx, pkg.OutputPath, npmDistTag, registry); err != nil {
			return relkiterrors.NewFatalError("unable to publish %s: %v", pkg.Name, err)
		}
	}

	body, err := staged.releaseNotes.GithubReleaseEntry()
	if err != nil {
		return err
	}
	if err := a.github.CreateRelease(ctx, github.ReleaseOptions{
		TagName:    tagName,
		Name:       tagName,
		Body:       body,
		Prerelease: staged.version.Prerelease() != "",
	}); err != nil {
		return err
	}

	a.splog.Info("Published %s successfully.", tui.ColorVersion("v"+staged.version.String()))
	return nil
}

// verifyStagedVersionOnDisk guards against publishing from a checkout that does
// not carry the staged release commit.
func (a *Action) verifyStagedVersionOnDisk(version *semver.Version) error {
	data, err := os.ReadFile(filepath.Join(a.projectDir, "package.json"))
	if err != nil {
		return err
	}
	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return err
	}
	if pkg.Version != version.String() {
		return relkiterrors.NewFatalError(
			"the checked-out branch declares version %q, expected the staged %q. "+
				"The staging pull request does not appear to be merged.", pkg.Version, version)
	}
	return nil
}

// verifyBuiltPackageVersions fails fatally unless every built artifact declares
// exactly the intended version. Experimental packages are checked against their
// mapped experimental version. This prevents publishing stale output.
func (a *Action) verifyBuiltPackageVersions(version *semver.Version, built []BuiltPackage) error {
	for _, pkg := range built {
		expected := version
		if pkg.Experimental {
			experimental, err := versioning.ComputeExperimentalVersion(version)
			if err != nil {
				return err
			}
			expected = experimental
		}

		data, err := os.ReadFile(filepath.Join(pkg.OutputPath, "package.json"))
		if err != nil {
			return relkiterrors.NewFatalError("unable to read built package.json for %s: %v", pkg.Name, err)
		}
		var manifest struct {
			Version string `json:"version"`
		}
		if err := json.Unmarshal(data, &manifest); err != nil {
			return relkiterrors.NewFatalError("unable to parse built package.json for %s: %v", pkg.Name, err)
		}

		if manifest.Version != expected.String() {
			return relkiterrors.NewFatalError(
				"built package %s declares version %q but %q is being released. Not publishing stale output.",
				pkg.Name, manifest.Version, expected)
		}
	}
	return nil
}
