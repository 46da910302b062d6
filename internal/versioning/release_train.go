package versioning

import (
	"github.com/Masterminds/semver/v3"
)

// ReleaseTrain describes a branch under active release management together with
// the version it is currently on.
type ReleaseTrain struct {
	// BranchName is the git branch the train lives on ("main", "17.2.x").
	BranchName string
	// Version is the version declared in the branch's package.json.
	Version *semver.Version
	// IsExceptionalMinor marks a train cut outside the regular cadence, off an
	// already-released minor.
	IsExceptionalMinor bool
}

// IsMajor reports whether the train is working towards a major release.
func (t *ReleaseTrain) IsMajor() bool {
	return t.Version.Minor() == 0 && t.Version.Patch() == 0
}

// ActiveReleaseTrains is the full set of trains currently under release
// management. Next and Latest always exist; ReleaseCandidate and
// ExceptionalMinor are nil outside their respective phases.
type ActiveReleaseTrains struct {
	// Next is the main development branch.
	Next *ReleaseTrain
	// Latest is the most recent stable version branch.
	Latest *ReleaseTrain
	// ReleaseCandidate is the version branch in feature-freeze or
	// release-candidate phase, if any.
	ReleaseCandidate *ReleaseTrain
	// ExceptionalMinor is the in-progress exceptional minor branch, if any.
	ExceptionalMinor *ReleaseTrain
}
