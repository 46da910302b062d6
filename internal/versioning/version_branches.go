// Package versioning models the release trains of a project: which version
// branches exist, what phase each is in, and which versions they carry.
package versioning

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"relkit.dev/relkit/internal/github"
)

// versionBranchRegex matches release version branches like "17.2.x".
var versionBranchRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.x$`)

// IsVersionBranch reports whether a branch name is a version branch.
func IsVersionBranch(branchName string) bool {
	return versionBranchRegex.MatchString(branchName)
}

// ParseVersionBranch converts a version branch name into the semantic version
// the branch name implies ("17.2.x" -> 17.2.0). The authoritative version of the
// branch lives in its package.json; this is only the name-derived floor.
func ParseVersionBranch(branchName string) (*semver.Version, error) {
	match := versionBranchRegex.FindStringSubmatch(branchName)
	if match == nil {
		return nil, fmt.Errorf("invalid version branch name: %q", branchName)
	}
	return semver.NewVersion(fmt.Sprintf("%s.%s.0", match[1], match[2]))
}

// FormatVersionBranch returns the version branch name for a semantic version.
func FormatVersionBranch(version *semver.Version) string {
	return fmt.Sprintf("%d.%d.x", version.Major(), version.Minor())
}

// packageJson is the subset of package.json the release engine reads. The
// version field is the authoritative per-branch version source; the
// exceptionalMinor sentinel marks a branch as an out-of-cycle minor train.
type packageJson struct {
	Version          string `json:"version"`
	ExceptionalMinor bool   `json:"exceptionalMinor"`
}

// branchState is the version state declared by a branch's package.json.
type branchState struct {
	Version            *semver.Version
	IsExceptionalMinor bool
}

// FetchBranchVersion reads a branch's authoritative version and its
// exceptional-minor marker from the branch's package.json.
func FetchBranchVersion(ctx context.Context, gh github.Client, branchName string) (*semver.Version, bool, error) {
	state, err := fetchBranchState(ctx, gh, branchName)
	if err != nil {
		return nil, false, err
	}
	return state.Version, state.IsExceptionalMinor, nil
}

// fetchBranchState reads and parses the package.json version of a branch. An
// unreadable file or unparsable version is fatal: the rest of the system cannot
// safely reason about an incomplete train set.
func fetchBranchState(ctx context.Context, gh github.Client, branchName string) (*branchState, error) {
	content, err := gh.GetFileContents(ctx, branchName, "package.json")
	if err != nil {
		return nil, fmt.Errorf("unable to read package.json on branch %q: %w", branchName, err)
	}

	var pkg packageJson
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("unable to parse package.json on branch %q: %w", branchName, err)
	}

	version, err := semver.NewVersion(pkg.Version)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q in package.json on branch %q: %w", pkg.Version, branchName, err)
	}

	return &branchState{Version: version, IsExceptionalMinor: pkg.ExceptionalMinor}, nil
}
