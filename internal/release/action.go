// Package release implements the release-train state machine: the closed set of
// release actions, their eligibility rules, and the staging/publish protocol
// each action performs.
package release

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"relkit.dev/relkit/internal/config"
	"relkit.dev/relkit/internal/git"
	"relkit.dev/relkit/internal/github"
	"relkit.dev/relkit/internal/npm"
	"relkit.dev/relkit/internal/runtime"
	"relkit.dev/relkit/internal/tui"
	"relkit.dev/relkit/internal/versioning"
)

// ActionKind identifies one legal state transition of the release-train
// constellation.
type ActionKind string

const (
	ActionCutNewPatch                         ActionKind = "cut-new-patch"
	ActionCutStable                           ActionKind = "cut-stable"
	ActionCutNpmNextPrerelease                ActionKind = "cut-npm-next-prerelease"
	ActionCutNpmNextReleaseCandidate          ActionKind = "cut-npm-next-release-candidate"
	ActionMoveNextIntoFeatureFreeze           ActionKind = "move-next-into-feature-freeze"
	ActionMoveNextIntoReleaseCandidate        ActionKind = "move-next-into-release-candidate"
	ActionConfigureNextAsMajor                ActionKind = "configure-next-as-major"
	ActionPrepareExceptionalMinor             ActionKind = "prepare-exceptional-minor"
	ActionCutExceptionalMinorPrerelease       ActionKind = "cut-exceptional-minor-prerelease"
	ActionCutExceptionalMinorReleaseCandidate ActionKind = "cut-exceptional-minor-release-candidate"
	ActionCutLongTermSupportPatch             ActionKind = "cut-lts-patch"
	ActionSpecialCutLongTermSupportMinor      ActionKind = "special-cut-lts-minor"
	ActionTagRecentMajorAsLatest              ActionKind = "tag-recent-major-as-latest"
)

// AllActionKinds lists every action in the order they are offered to the
// caretaker.
var AllActionKinds = []ActionKind{
	ActionCutNewPatch,
	ActionCutStable,
	ActionCutNpmNextPrerelease,
	ActionCutNpmNextReleaseCandidate,
	ActionMoveNextIntoFeatureFreeze,
	ActionMoveNextIntoReleaseCandidate,
	ActionConfigureNextAsMajor,
	ActionPrepareExceptionalMinor,
	ActionCutExceptionalMinorPrerelease,
	ActionCutExceptionalMinorReleaseCandidate,
	ActionCutLongTermSupportPatch,
	ActionSpecialCutLongTermSupportMinor,
	ActionTagRecentMajorAsLatest,
}

// prereleaseID returns the leading identifier of a version's prerelease segment
// ("next" for 17.0.0-next.3), or "" for stable versions.
func prereleaseID(version *semver.Version) string {
	prerelease := version.Prerelease()
	if prerelease == "" {
		return ""
	}
	if idx := strings.IndexByte(prerelease, '.'); idx >= 0 {
		return prerelease[:idx]
	}
	return prerelease
}

// Eligible reports whether an action is a legal transition for the current
// train constellation. Several actions can be eligible at once; the caretaker
// picks one interactively and the engine never disambiguates on its own.
func Eligible(kind ActionKind, trains *versioning.ActiveReleaseTrains) bool {
	rc := trains.ReleaseCandidate
	em := trains.ExceptionalMinor

	switch kind {
	case ActionCutNewPatch:
		return true
	case ActionCutStable:
		return (rc != nil && prereleaseID(rc.Version) == "rc") ||
			(em != nil && prereleaseID(em.Version) == "rc")
	case ActionCutNpmNextPrerelease:
		return true
	case ActionCutNpmNextReleaseCandidate:
		return rc != nil && prereleaseID(rc.Version) == "rc"
	case ActionMoveNextIntoFeatureFreeze:
		return rc == nil && trains.Next.IsMajor()
	case ActionMoveNextIntoReleaseCandidate:
		return rc != nil && prereleaseID(rc.Version) == "next"
	case ActionConfigureNextAsMajor:
		return rc == nil && !trains.Next.IsMajor()
	case ActionPrepareExceptionalMinor:
		return em == nil &&
			((rc != nil && rc.IsMajor()) || (rc == nil && trains.Next.IsMajor()))
	case ActionCutExceptionalMinorPrerelease:
		// Valid in every exceptional minor phase: it iterates "next"
		// prereleases as well as rc prereleases.
		return em != nil
	case ActionCutExceptionalMinorReleaseCandidate:
		return em != nil && prereleaseID(em.Version) == "next"
	case ActionCutLongTermSupportPatch:
		return true
	case ActionSpecialCutLongTermSupportMinor:
		return true
	case ActionTagRecentMajorAsLatest:
		return rc == nil && trains.Latest.IsMajor()
	}
	return false
}

// EligibleActions filters the full action set down to the legal transitions for
// the current trains.
func EligibleActions(trains *versioning.ActiveReleaseTrains) []ActionKind {
	var eligible []ActionKind
	for _, kind := range AllActionKinds {
		if Eligible(kind, trains) {
			eligible = append(eligible, kind)
		}
	}
	return eligible
}

// Action is one selected release action, bound to the collaborator clients and
// the train snapshot it operates on. It exists for the duration of a single
// Perform call.
type Action struct {
	Kind ActionKind

	trains     *versioning.ActiveReleaseTrains
	cfg        *config.ReleaseConfig
	git        *git.Client
	github     github.Client
	npm        *npm.Client
	external   *ExternalCommands
	splog      *tui.Splog
	projectDir string
}

// NewAction binds an action kind to the runtime context and train snapshot.
func NewAction(kind ActionKind, rt *runtime.Context, trains *versioning.ActiveReleaseTrains) *Action {
	return &Action{
		Kind:       kind,
		trains:     trains,
		cfg:        rt.Config,
		git:        rt.Git,
		github:     rt.Github,
		npm:        rt.Npm,
		external:   NewExternalCommands(rt.ProjectDir, rt.Config, rt.Splog),
		splog:      rt.Splog,
		projectDir: rt.ProjectDir,
	}
}

// Description renders the caretaker-facing summary of what the action will do,
// including the concrete version it would produce.
func (a *Action) Description() string {
	trains := a.trains
	switch a.Kind {
	case ActionCutNewPatch:
		version, _ := versioning.SemverInc(trains.Latest.Version, "patch", "")
		return fmt.Sprintf("Cut a new patch release for the %q branch (v%s).", trains.Latest.BranchName, version)
	case ActionCutStable:
		source := stableCutSource(trains)
		version, _ := stableVersionOf(source.Version)
		return fmt.Sprintf("Cut a stable release for the %q branch (v%s).", source.BranchName, version)
	case ActionCutNpmNextPrerelease:
		branch := trains.Next.BranchName
		if trains.ReleaseCandidate != nil {
			branch = trains.ReleaseCandidate.BranchName
		}
		return fmt.Sprintf("Cut a new next prerelease for the %q branch.", branch)
	case ActionCutNpmNextReleaseCandidate:
		version, _ := versioning.SemverInc(trains.ReleaseCandidate.Version, "prerelease", "")
		return fmt.Sprintf("Cut a new release candidate for the %q branch (v%s).", trains.ReleaseCandidate.BranchName, version)
	case ActionMoveNextIntoFeatureFreeze:
		return fmt.Sprintf("Move the %q branch into feature-freeze phase (v%s).",
			trains.Next.BranchName, trains.Next.Version)
	case ActionMoveNextIntoReleaseCandidate:
		version, _ := versioning.WithPrereleaseID(trains.ReleaseCandidate.Version, "rc")
		return fmt.Sprintf("Move the %q branch into release-candidate phase (v%s).", trains.ReleaseCandidate.BranchName, version)
	case ActionConfigureNextAsMajor:
		version, _ := nextAsMajorVersion(trains.Next.Version)
		return fmt.Sprintf("Configure the %q branch to be released as major (v%s).", trains.Next.BranchName, version)
	case ActionPrepareExceptionalMinor:
		version, _ := exceptionalMinorVersion(trains.Latest.Version)
		return fmt.Sprintf("Prepare an exceptional minor based on the existing %q branch (%q, v%s).",
			trains.Latest.BranchName, versioning.FormatVersionBranch(version), version)
	case ActionCutExceptionalMinorPrerelease:
		version, _ := versioning.SemverInc(trains.ExceptionalMinor.Version, "prerelease", "")
		return fmt.Sprintf("Cut a new exceptional minor prerelease for the %q branch (v%s).",
			trains.ExceptionalMinor.BranchName, version)
	case ActionCutExceptionalMinorReleaseCandidate:
		version, _ := versioning.WithPrereleaseID(trains.ExceptionalMinor.Version, "rc")
		return fmt.Sprintf("Cut an exceptional minor release candidate for the %q branch (v%s).",
			trains.ExceptionalMinor.BranchName, version)
	case ActionCutLongTermSupportPatch:
		return "Cut a new patch release for an active LTS branch."
	case ActionSpecialCutLongTermSupportMinor:
		return "Cut a new minor release for an LTS branch. This is a special action for unusual situations."
	case ActionTagRecentMajorAsLatest:
		return fmt.Sprintf("Retag the recently released major v%s as \"latest\" in npm.", trains.Latest.Version)
	}
	return string(a.Kind)
}

// Perform executes the action's effect. It returns a UserAbortedError when the
// caretaker declines a confirmation, a FatalError for expected-but-unrecoverable
// conditions, and wraps everything else as unexpected.
func (a *Action) Perform(ctx context.Context) error {
	switch a.Kind {
	case ActionCutNewPatch:
		return a.performCutNewPatch(ctx)
	case ActionCutStable:
		return a.performCutStable(ctx)
	case ActionCutNpmNextPrerelease:
		return a.performCutNpmNextPrerelease(ctx)
	case ActionCutNpmNextReleaseCandidate:
		return a.performCutNpmNextReleaseCandidate(ctx)
	case ActionMoveNextIntoFeatureFreeze:
		return a.performMoveNextIntoFeatureFreeze(ctx)
	case ActionMoveNextIntoReleaseCandidate:
		return a.performMoveNextIntoReleaseCandidate(ctx)
	case ActionConfigureNextAsMajor:
		return a.performConfigureNextAsMajor(ctx)
	case ActionPrepareExceptionalMinor:
		return a.performPrepareExceptionalMinor(ctx)
	case ActionCutExceptionalMinorPrerelease:
		return a.performCutExceptionalMinorPrerelease(ctx)
	case ActionCutExceptionalMinorReleaseCandidate:
		return a.performCutExceptionalMinorReleaseCandidate(ctx)
	case ActionCutLongTermSupportPatch:
		return a.performCutLongTermSupportPatch(ctx)
	case ActionSpecialCutLongTermSupportMinor:
		return a.performSpecialCutLongTermSupportMinor(ctx)
	case ActionTagRecentMajorAsLatest:
		return a.performTagRecentMajorAsLatest(ctx)
	}
	return fmt.Errorf("unknown release action: %s", a.Kind)
}

// stableCutSource returns the train a stable cut releases from: the release
// candidate when it is in rc phase, otherwise the exceptional minor. Callers
// must only use it when the stable cut is eligible.
func stableCutSource(trains *versioning.ActiveReleaseTrains) *versioning.ReleaseTrain {
	rc := trains.ReleaseCandidate
	if rc != nil && prereleaseID(rc.Version) == "rc" {
		return rc
	}
	return trains.ExceptionalMinor
}

// stableVersionOf strips the prerelease segment off a release-candidate version.
func stableVersionOf(version *semver.Version) (*semver.Version, error) {
	v, err := version.SetPrerelease("")
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// nextAsMajorVersion computes the version the next train moves to when it is
// reconfigured to work towards a major release.
func nextAsMajorVersion(version *semver.Version) (*semver.Version, error) {
	major := semver.New(version.Major()+1, 0, 0, "", "")
	return versioning.WithPrereleaseID(major, "next")
}

// exceptionalMinorVersion computes the starting version of an exceptional minor
// branched off the latest train.
func exceptionalMinorVersion(latest *semver.Version) (*semver.Version, error) {
	minor := semver.New(latest.Major(), latest.Minor()+1, 0, "", "")
	return versioning.WithPrereleaseID(minor, "next")
}
