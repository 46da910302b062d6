package versioning

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"

	"relkit.dev/relkit/internal/config"
	"relkit.dev/relkit/internal/npm"
)

// ltsNpmDistTagRegex matches LTS dist-tags like "v16-lts".
var ltsNpmDistTagRegex = regexp.MustCompile(`^v(\d+)-lts$`)

// ltsSupportWindow is how long a major receives long-term support after its
// initial stable release.
const ltsSupportWindow = 18 * 30 * 24 * time.Hour

// LtsBranch describes a version branch tracked through an LTS npm dist-tag.
type LtsBranch struct {
	// Name is the version branch ("16.2.x") derived from the most recent
	// version published under the LTS dist-tag.
	Name string
	// Version is the most recent version published under the dist-tag.
	Version *semver.Version
	// NpmDistTag is the dist-tag the branch publishes to ("v16-lts").
	NpmDistTag string
}

// LtsBranches splits the LTS branches of a project into those still inside
// their support window and those past it.
type LtsBranches struct {
	Active   []LtsBranch
	Inactive []LtsBranch
}

// GetLtsNpmDistTagOfMajor returns the LTS dist-tag for a major version.
func GetLtsNpmDistTagOfMajor(major uint64) string {
	return fmt.Sprintf("v%d-lts", major)
}

// FetchLongTermSupportBranches enumerates the LTS branches of the project from
// the representative package's dist-tags, partitioned by whether the owning
// major is still inside its support window at the given time.
func FetchLongTermSupportBranches(ctx context.Context, cfg *config.ReleaseConfig, now time.Time) (*LtsBranches, error) {
	info, err := npm.FetchPackageInfo(ctx, cfg.Registry(), cfg.RepresentativeNpmPackage)
	if err != nil {
		return nil, fmt.Errorf("unable to determine LTS branches: %w", err)
	}

	branches := &LtsBranches{}
	for tag, versionStr := range info.DistTags {
		match := ltsNpmDistTagRegex.FindStringSubmatch(tag)
		if match == nil {
			continue
		}

		version, err := semver.NewVersion(versionStr)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q for dist-tag %q: %w", versionStr, tag, err)
		}

		branch := LtsBranch{
			Name:       FormatVersionBranch(version),
			Version:    version,
			NpmDistTag: tag,
		}

		if isMajorInLtsWindow(info, version.Major(), now) {
			branches.Active = append(branches.Active, branch)
		} else {
			branches.Inactive = append(branches.Inactive, branch)
		}
	}

	sortLtsBranches(branches.Active)
	sortLtsBranches(branches.Inactive)

	return branches, nil
}

// isMajorInLtsWindow reports whether a major's support window is still open.
// The window opens at the publish time of the major's initial stable release;
// a major with no recorded publish time is treated as out of support.
func isMajorInLtsWindow(info *npm.PackageInfo, major uint64, now time.Time) bool {
	publishedAt, ok := info.Time[fmt.Sprintf("%d.0.0", major)]
	if !ok {
		return false
	}
	return now.Before(publishedAt.Add(ltsSupportWindow))
}

func sortLtsBranches(branches []LtsBranch) {
	sort.Slice(branches, func(i, j int) bool {
		return branches[j].Version.LessThan(branches[i].Version)
	})
}
