package release

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"

	relkiterrors "relkit.dev/relkit/internal/errors"
	"relkit.dev/relkit/internal/npm"
	"relkit.dev/relkit/internal/tui"
	"relkit.dev/relkit/internal/versioning"
)

// npmDistTagNext is the dist-tag prereleases of the next train publish to.
const npmDistTagNext = "next"

// npmDistTagLatest is the dist-tag stable releases publish to.
const npmDistTagLatest = "latest"

// npmDistTagExceptionalMinor deliberately discourages accidental installs of
// in-progress exceptional minor prereleases.
const npmDistTagExceptionalMinor = "do-not-use-exceptional-minor"

func (a *Action) performCutNewPatch(ctx context.Context) error {
	latest := a.trains.Latest
	newVersion, err := versioning.SemverInc(latest.Version, "patch", "")
	if err != nil {
		return err
	}

	staged, err := a.stageVersionForBranch(ctx, newVersion, latest.Version, latest.BranchName, nil)
	if err != nil {
		return err
	}
	if err := a.publish(ctx, staged, npmDistTagLatest); err != nil {
		return err
	}
	return a.cherryPickChangelogIntoNext(ctx, staged)
}

func (a *Action) performCutStable(ctx context.Context) error {
	source := stableCutSource(a.trains)
	isExceptionalMinor := source == a.trains.ExceptionalMinor
	newVersion, err := stableVersionOf(source.Version)
	if err != nil {
		return err
	}

	// Promoting an exceptional minor to latest clears its sentinel.
	var mutate packageJsonMutator
	if isExceptionalMinor {
		mutate = func(pkg map[string]any) {
			delete(pkg, "exceptionalMinor")
		}
	}

	staged, err := a.stageVersionForBranch(ctx, newVersion, a.trains.Latest.Version, source.BranchName, mutate)
	if err != nil {
		return err
	}
	if err := a.publish(ctx, staged, npmDistTagLatest); err != nil {
		return err
	}

	if isExceptionalMinor {
		// The in-progress dist-tag is obsolete once the minor replaces latest.
		if err := a.external.InvokeDeleteNpmDistTag(ctx, npmDistTagExceptionalMinor); err != nil {
			return err
		}
	} else if newVersion.Minor() == 0 && newVersion.Patch() == 0 {
		// A new major retires the previous major into long-term support.
		previous := a.trains.Latest
		ltsTag := versioning.GetLtsNpmDistTagOfMajor(previous.Version.Major())
		if err := a.external.InvokeSetNpmDistTag(ctx, ltsTag, previous.Version); err != nil {
			return err
		}
		a.splog.Info("Tagged v%s as %q in npm.", previous.Version, ltsTag)
	}

	return a.cherryPickChangelogIntoNext(ctx, staged)
}

func (a *Action) performCutNpmNextPrerelease(ctx context.Context) error {
	rc := a.trains.ReleaseCandidate

	if rc != nil {
		newVersion, err := versioning.SemverInc(rc.Version, "prerelease", "")
		if err != nil {
			return err
		}
		staged, err := a.stageVersionForBranch(ctx, newVersion, rc.Version, rc.BranchName, nil)
		if err != nil {
			return err
		}
		return a.publish(ctx, staged, npmDistTagNext)
	}

	next := a.trains.Next
	newVersion, err := versioning.ComputeNewPrereleaseVersionForNext(ctx, a.trains, a.cfg)
	if err != nil {
		return err
	}

	// When the branch version was already published, the bumped version diffs
	// against it; otherwise the previous release tag is the last stable one.
	compareVersion := next.Version
	if newVersion.Equal(next.Version) {
		compareVersion = a.trains.Latest.Version
	}

	staged, err := a.stageVersionForBranch(ctx, newVersion, compareVersion, next.BranchName, nil)
	if err != nil {
		return err
	}
	return a.publish(ctx, staged, npmDistTagNext)
}

func (a *Action) performCutNpmNextReleaseCandidate(ctx context.Context) error {
	rc := a.trains.ReleaseCandidate
	newVersion, err := versioning.SemverInc(rc.Version, "prerelease", "")
	if err != nil {
		return err
	}

	staged, err := a.stageVersionForBranch(ctx, newVersion, rc.Version, rc.BranchName, nil)
	if err != nil {
		return err
	}
	return a.publish(ctx, staged, npmDistTagNext)
}

func (a *Action) performMoveNextIntoFeatureFreeze(ctx context.Context) error {
	next := a.trains.Next
	newBranch := versioning.FormatVersionBranch(next.Version)

	if err := a.verifyPassingCI(ctx, next.BranchName); err != nil {
		return err
	}
	if err := a.checkoutUpstreamBranch(ctx, next.BranchName); err != nil {
		return err
	}

	owner, repo := a.github.GetOwnerRepo()
	upstreamURL := a.github.RepositoryGitURL(owner, repo)
	if err := a.git.Push(ctx, upstreamURL, "HEAD:refs/heads/"+newBranch); err != nil {
		return relkiterrors.NewFatalError("unable to create the %q version branch: %v", newBranch, err)
	}
	a.splog.Info("Created the %s version branch.", tui.ColorBranchName(newBranch))

	// The main branch moves on to the next minor.
	bumped, err := versioning.SemverInc(next.Version, "minor", "")
	if err != nil {
		return err
	}
	newNextVersion, err := versioning.WithPrereleaseID(bumped, "next")
	if err != nil {
		return err
	}

	message := fmt.Sprintf("release: bump the next branch to v%s", newNextVersion)
	_, err = a.stageVersionBumpWithoutChangelog(ctx, newNextVersion, next.BranchName, message, nil)
	return err
}

func (a *Action) performMoveNextIntoReleaseCandidate(ctx context.Context) error {
	rc := a.trains.ReleaseCandidate
	newVersion, err := versioning.WithPrereleaseID(rc.Version, "rc")
	if err != nil {
		return err
	}

	staged, err := a.stageVersionForBranch(ctx, newVersion, rc.Version, rc.BranchName, nil)
	if err != nil {
		return err
	}
	return a.publish(ctx, staged, npmDistTagNext)
}

func (a *Action) performConfigureNextAsMajor(ctx context.Context) error {
	next := a.trains.Next
	newVersion, err := nextAsMajorVersion(next.Version)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("release: switch the next branch to v%s", newVersion)
	_, err = a.stageVersionBumpWithoutChangelog(ctx, newVersion, next.BranchName, message, nil)
	return err
}

func (a *Action) performPrepareExceptionalMinor(ctx context.Context) error {
	latest := a.trains.Latest
	newVersion, err := exceptionalMinorVersion(latest.Version)
	if err != nil {
		return err
	}
	newBranch := versioning.FormatVersionBranch(newVersion)

	if err := a.verifyPassingCI(ctx, latest.BranchName); err != nil {
		return err
	}
	if err := a.checkoutUpstreamBranch(ctx, latest.BranchName); err != nil {
		return err
	}

	owner, repo := a.github.GetOwnerRepo()
	upstreamURL := a.github.RepositoryGitURL(owner, repo)
	if err := a.git.Push(ctx, upstreamURL, "HEAD:refs/heads/"+newBranch); err != nil {
		return relkiterrors.NewFatalError("unable to create the %q exceptional minor branch: %v", newBranch, err)
	}
	a.splog.Info("Created the %s exceptional minor branch.", tui.ColorBranchName(newBranch))

	message := fmt.Sprintf("release: prepare the exceptional minor branch %q (v%s)", newBranch, newVersion)
	_, err = a.stageVersionBumpWithoutChangelog(ctx, newVersion, newBranch, message, func(pkg map[string]any) {
		pkg["exceptionalMinor"] = true
	})
	return err
}

func (a *Action) performCutExceptionalMinorPrerelease(ctx context.Context) error {
	em := a.trains.ExceptionalMinor
	newVersion, err := versioning.SemverInc(em.Version, "prerelease", "")
	if err != nil {
		return err
	}

	staged, err := a.stageVersionForBranch(ctx, newVersion, em.Version, em.BranchName, nil)
	if err != nil {
		return err
	}
	return a.publish(ctx, staged, npmDistTagExceptionalMinor)
}

func (a *Action) performCutExceptionalMinorReleaseCandidate(ctx context.Context) error {
	em := a.trains.ExceptionalMinor
	newVersion, err := versioning.WithPrereleaseID(em.Version, "rc")
	if err != nil {
		return err
	}

	staged, err := a.stageVersionForBranch(ctx, newVersion, em.Version, em.BranchName, nil)
	if err != nil {
		return err
	}
	return a.publish(ctx, staged, npmDistTagExceptionalMinor)
}

func (a *Action) performCutLongTermSupportPatch(ctx context.Context) error {
	ltsBranches, err := versioning.FetchLongTermSupportBranches(ctx, a.cfg, time.Now())
	if err != nil {
		return err
	}
	if len(ltsBranches.Active) == 0 {
		return relkiterrors.NewFatalError("no version branch is inside its long-term support window")
	}

	options := make([]tui.SelectOption, 0, len(ltsBranches.Active))
	for _, branch := range ltsBranches.Active {
		options = append(options, tui.SelectOption{
			Label: fmt.Sprintf("%s (v%s)", branch.Name, branch.Version),
			Value: branch.Name,
		})
	}
	selected, err := tui.PromptSelect("Select the LTS branch to cut a patch for:", options, 0)
	if err != nil {
		return relkiterrors.NewUserAbortedError()
	}

	var ltsBranch versioning.LtsBranch
	for _, branch := range ltsBranches.Active {
		if branch.Name == selected {
			ltsBranch = branch
		}
	}

	newVersion, err := versioning.SemverInc(ltsBranch.Version, "patch", "")
	if err != nil {
		return err
	}

	staged, err := a.stageVersionForBranch(ctx, newVersion, ltsBranch.Version, ltsBranch.Name, nil)
	if err != nil {
		return err
	}
	return a.publish(ctx, staged, ltsBranch.NpmDistTag)
}

func (a *Action) performSpecialCutLongTermSupportMinor(ctx context.Context) error {
	branchName, err := tui.PromptTextInput("Enter the LTS version branch to cut a minor for (e.g. 16.2.x):", "")
	if err != nil {
		return relkiterrors.NewUserAbortedError()
	}
	if !versioning.IsVersionBranch(branchName) {
		return relkiterrors.NewFatalError("%q is not a version branch", branchName)
	}

	currentVersion, _, err := versioning.FetchBranchVersion(ctx, a.github, branchName)
	if err != nil {
		return err
	}
	newVersion, err := versioning.SemverInc(currentVersion, "minor", "")
	if err != nil {
		return err
	}

	confirmed, err := confirm(fmt.Sprintf(
		"Cut v%s from %q and publish it under the LTS dist-tag? This is not part of the regular release cadence.",
		newVersion, branchName), false)
	if err != nil || !confirmed {
		return relkiterrors.NewUserAbortedError()
	}

	staged, err := a.stageVersionForBranch(ctx, newVersion, currentVersion, branchName, nil)
	if err != nil {
		return err
	}
	return a.publish(ctx, staged, versioning.GetLtsNpmDistTagOfMajor(newVersion.Major()))
}

func (a *Action) performTagRecentMajorAsLatest(ctx context.Context) error {
	latest := a.trains.Latest

	confirmed, err := confirm(fmt.Sprintf(
		"Retag v%s as %q for all configured packages?", latest.Version, npmDistTagLatest), true)
	if err != nil || !confirmed {
		return relkiterrors.NewUserAbortedError()
	}

	if err := a.external.InvokeSetNpmDistTag(ctx, npmDistTagLatest, latest.Version); err != nil {
		return err
	}

	// The previous major enters long-term support once the new one is latest.
	previousMajor := latest.Version.Major() - 1
	info, err := a.fetchRepresentativePackageInfo(ctx)
	if err != nil {
		return err
	}
	ltsVersion := highestVersionOfMajor(info, previousMajor)
	if ltsVersion != nil {
		ltsTag := versioning.GetLtsNpmDistTagOfMajor(previousMajor)
		if err := a.external.InvokeSetNpmDistTag(ctx, ltsTag, ltsVersion); err != nil {
			return err
		}
		a.splog.Info("Tagged v%s as %q in npm.", ltsVersion, ltsTag)
	}

	a.splog.Info("v%s is now the %q release in npm.", latest.Version, npmDistTagLatest)
	return nil
}

func (a *Action) fetchRepresentativePackageInfo(ctx context.Context) (*npm.PackageInfo, error) {
	return npm.FetchPackageInfo(ctx, a.cfg.Registry(), a.cfg.RepresentativeNpmPackage)
}

// highestVersionOfMajor returns the highest stable published version of a
// major, or nil when the major has no stable release.
func highestVersionOfMajor(info *npm.PackageInfo, major uint64) *semver.Version {
	var highest *semver.Version
	for published := range info.Versions {
		version, err := semver.NewVersion(published)
		if err != nil || version.Major() != major || version.Prerelease() != "" {
			continue
		}
		if highest == nil || highest.LessThan(version) {
			highest = version
		}
	}
	return highest
}
