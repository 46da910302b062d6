package versioning

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"relkit.dev/relkit/internal/config"
	"relkit.dev/relkit/internal/github"
)

// versionBranch pairs a version branch name with its name-derived version,
// used for ordering before the authoritative package.json versions are read.
type versionBranch struct {
	name    string
	ordinal *semver.Version
}

// FetchActiveReleaseTrains determines the current release trains of the
// repository. The next train is read from the main branch; the remaining trains
// are classified from the version branches in descending order. Any state that
// cannot be classified unambiguously is an error, never a guess.
func FetchActiveReleaseTrains(ctx context.Context, gh github.Client, cfg *config.ReleaseConfig) (*ActiveReleaseTrains, error) {
	mainBranch := cfg.MainBranch()

	nextState, err := fetchBranchState(ctx, gh, mainBranch)
	if err != nil {
		return nil, err
	}
	if nextState.IsExceptionalMinor {
		return nil, fmt.Errorf("main branch %q must not be marked as an exceptional minor", mainBranch)
	}

	trains := &ActiveReleaseTrains{
		Next: &ReleaseTrain{BranchName: mainBranch, Version: nextState.Version},
	}

	branches, err := collectVersionBranches(ctx, gh)
	if err != nil {
		return nil, err
	}

	for _, branch := range branches {
		state, err := fetchBranchState(ctx, gh, branch.name)
		if err != nil {
			return nil, err
		}
		train := &ReleaseTrain{
			BranchName:         branch.name,
			Version:            state.Version,
			IsExceptionalMinor: state.IsExceptionalMinor,
		}

		if state.IsExceptionalMinor {
			if trains.ExceptionalMinor != nil {
				return nil, fmt.Errorf(
					"unable to determine release trains: multiple exceptional minor branches (%q and %q)",
					trains.ExceptionalMinor.BranchName, branch.name)
			}
			trains.ExceptionalMinor = train
			continue
		}

		if state.Version.Prerelease() != "" {
			if trains.ReleaseCandidate != nil {
				return nil, fmt.Errorf(
					"unable to determine release trains: multiple branches in prerelease phase (%q and %q)",
					trains.ReleaseCandidate.BranchName, branch.name)
			}
			trains.ReleaseCandidate = train
			continue
		}

		trains.Latest = train
		break
	}

	if trains.Latest == nil {
		return nil, fmt.Errorf("unable to determine release trains: no stable version branch found")
	}
	if !trains.Latest.Version.LessThan(trains.Next.Version) {
		return nil, fmt.Errorf(
			"invalid release train state: latest (%s) is not behind next (%s)",
			trains.Latest.Version, trains.Next.Version)
	}

	return trains, nil
}

// collectVersionBranches lists the repository's protected version branches
// sorted by their name-derived version, most recent first. Unprotected branches
// that happen to match the version pattern are not release trains.
func collectVersionBranches(ctx context.Context, gh github.Client) ([]versionBranch, error) {
	all, err := gh.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list repository branches: %w", err)
	}

	var branches []versionBranch
	for _, b := range all {
		if !b.Protected || !IsVersionBranch(b.Name) {
			continue
		}
		ordinal, err := ParseVersionBranch(b.Name)
		if err != nil {
			return nil, err
		}
		branches = append(branches, versionBranch{name: b.Name, ordinal: ordinal})
	}

	sort.Slice(branches, func(i, j int) bool {
		return branches[j].ordinal.LessThan(branches[i].ordinal)
	})

	return branches, nil
}
