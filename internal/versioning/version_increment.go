package versioning

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"relkit.dev/relkit/internal/config"
	"relkit.dev/relkit/internal/npm"
)

// SemverInc returns a new version with the given release component incremented.
// Supported releases are "major", "minor", "patch" (which clear any prerelease
// segment) and "prerelease" (which bumps the trailing prerelease number, or
// starts a "{preid}.0" prerelease on top of a patch bump for stable versions).
func SemverInc(version *semver.Version, release, preid string) (*semver.Version, error) {
	switch release {
	case "major":
		v := version.IncMajor()
		return &v, nil
	case "minor":
		v := version.IncMinor()
		return &v, nil
	case "patch":
		v := version.IncPatch()
		return &v, nil
	case "prerelease":
		return incPrerelease(version, preid)
	default:
		return nil, fmt.Errorf("unsupported release increment: %q", release)
	}
}

func incPrerelease(version *semver.Version, preid string) (*semver.Version, error) {
	prerelease := version.Prerelease()
	if prerelease == "" {
		if preid == "" {
			return nil, fmt.Errorf("cannot start a prerelease of %s without a prerelease id", version)
		}
		bumped := version.IncPatch()
		v, err := bumped.SetPrerelease(preid + ".0")
		if err != nil {
			return nil, err
		}
		return &v, nil
	}

	parts := strings.Split(prerelease, ".")
	last := parts[len(parts)-1]
	n, err := strconv.Atoi(last)
	if err != nil {
		parts = append(parts, "0")
	} else {
		parts[len(parts)-1] = strconv.Itoa(n + 1)
	}

	v, err := version.SetPrerelease(strings.Join(parts, "."))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// WithPrereleaseID returns the version with its prerelease segment replaced by
// "{preid}.0", e.g. 17.0.0-next.4 -> 17.0.0-rc.0.
func WithPrereleaseID(version *semver.Version, preid string) (*semver.Version, error) {
	v, err := version.SetPrerelease(preid + ".0")
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ComputeNewPrereleaseVersionForNext determines the version for a new prerelease
// on the next train. The version in the branch's package.json is used directly
// unless it was already published, in which case the prerelease number is bumped.
func ComputeNewPrereleaseVersionForNext(ctx context.Context, trains *ActiveReleaseTrains, cfg *config.ReleaseConfig) (*semver.Version, error) {
	nextVersion := trains.Next.Version

	info, err := npm.FetchPackageInfo(ctx, cfg.Registry(), cfg.RepresentativeNpmPackage)
	if err != nil {
		return nil, fmt.Errorf("unable to determine next prerelease version: %w", err)
	}

	if info.HasVersion(nextVersion.String()) {
		return SemverInc(nextVersion, "prerelease", "next")
	}
	return nextVersion, nil
}

// ComputeExperimentalVersion maps a project version to the 0.x experimental
// versioning scheme: 17.2.3 -> 0.1702.3, carrying over any prerelease segment.
func ComputeExperimentalVersion(version *semver.Version) (*semver.Version, error) {
	experimental, err := semver.NewVersion(fmt.Sprintf(
		"0.%d.%d", version.Major()*100+version.Minor(), version.Patch()))
	if err != nil {
		return nil, err
	}
	if version.Prerelease() != "" {
		v, err := experimental.SetPrerelease(version.Prerelease())
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	return experimental, nil
}
