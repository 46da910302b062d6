package release

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"

	"relkit.dev/relkit/internal/versioning"
)

func train(branch, version string) *versioning.ReleaseTrain {
	return &versioning.ReleaseTrain{BranchName: branch, Version: semver.MustParse(version)}
}

func exceptionalTrain(branch, version string) *versioning.ReleaseTrain {
	t := train(branch, version)
	t.IsExceptionalMinor = true
	return t
}

// regularTrains is the steady state: a minor in development, no freeze.
func regularTrains() *versioning.ActiveReleaseTrains {
	return &versioning.ActiveReleaseTrains{
		Next:   train("main", "17.1.0-next.2"),
		Latest: train("17.0.x", "17.0.4"),
	}
}

// majorFreezeTrains is a major in feature-freeze phase.
func majorFreezeTrains() *versioning.ActiveReleaseTrains {
	return &versioning.ActiveReleaseTrains{
		Next:             train("main", "18.1.0-next.0"),
		Latest:           train("17.3.x", "17.3.6"),
		ReleaseCandidate: train("18.0.x", "18.0.0-next.3"),
	}
}

// majorRcTrains is a major in release-candidate phase.
func majorRcTrains() *versioning.ActiveReleaseTrains {
	return &versioning.ActiveReleaseTrains{
		Next:             train("main", "18.1.0-next.0"),
		Latest:           train("17.3.x", "17.3.6"),
		ReleaseCandidate: train("18.0.x", "18.0.0-rc.2"),
	}
}

func TestEligibleRegularCycle(t *testing.T) {
	t.Parallel()

	trains := regularTrains()
	require.True(t, Eligible(ActionCutNewPatch, trains))
	require.True(t, Eligible(ActionCutNpmNextPrerelease, trains))
	require.True(t, Eligible(ActionConfigureNextAsMajor, trains))
	require.False(t, Eligible(ActionCutStable, trains))
	require.False(t, Eligible(ActionCutNpmNextReleaseCandidate, trains))
	require.False(t, Eligible(ActionMoveNextIntoFeatureFreeze, trains))
	require.False(t, Eligible(ActionMoveNextIntoReleaseCandidate, trains))
	require.False(t, Eligible(ActionCutExceptionalMinorPrerelease, trains))
	require.False(t, Eligible(ActionTagRecentMajorAsLatest, trains))
}

func TestEligibleFeatureFreezeFromMajorNext(t *testing.T) {
	t.Parallel()

	trains := &versioning.ActiveReleaseTrains{
		Next:   train("main", "17.0.0-next.3"),
		Latest: train("16.2.x", "16.2.11"),
	}
	require.True(t, Eligible(ActionMoveNextIntoFeatureFreeze, trains))
	require.False(t, Eligible(ActionConfigureNextAsMajor, trains))

	// Once a release candidate exists the freeze transition is gone.
	trains.ReleaseCandidate = train("17.0.x", "17.0.0-next.0")
	require.False(t, Eligible(ActionMoveNextIntoFeatureFreeze, trains))
}

func TestEligibleDuringFeatureFreeze(t *testing.T) {
	t.Parallel()

	trains := majorFreezeTrains()
	require.True(t, Eligible(ActionMoveNextIntoReleaseCandidate, trains))
	require.False(t, Eligible(ActionCutStable, trains))
	require.False(t, Eligible(ActionCutNpmNextReleaseCandidate, trains))
}

func TestEligibleDuringReleaseCandidatePhase(t *testing.T) {
	t.Parallel()

	trains := majorRcTrains()
	require.True(t, Eligible(ActionCutStable, trains))
	require.True(t, Eligible(ActionCutNpmNextReleaseCandidate, trains))
	require.False(t, Eligible(ActionMoveNextIntoReleaseCandidate, trains))
}

func TestEligiblePrepareExceptionalMinor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		trains *versioning.ActiveReleaseTrains
		want   bool
	}{
		{
			name: "major rc in progress",
			trains: &versioning.ActiveReleaseTrains{
				Next:             train("main", "18.1.0-next.0"),
				Latest:           train("17.3.x", "17.3.6"),
				ReleaseCandidate: train("18.0.x", "18.0.0-rc.0"),
			},
			want: true,
		},
		{
			name: "major next without rc",
			trains: &versioning.ActiveReleaseTrains{
				Next:   train("main", "18.0.0-next.2"),
				Latest: train("17.3.x", "17.3.6"),
			},
			want: true,
		},
		{
			name: "minor rc in progress",
			trains: &versioning.ActiveReleaseTrains{
				Next:             train("main", "17.3.0-next.0"),
				Latest:           train("17.1.x", "17.1.5"),
				ReleaseCandidate: train("17.2.x", "17.2.0-rc.1"),
			},
			want: false,
		},
		{
			name: "minor next without rc",
			trains: &versioning.ActiveReleaseTrains{
				Next:   train("main", "17.2.0-next.1"),
				Latest: train("17.1.x", "17.1.5"),
			},
			want: false,
		},
		{
			name: "exceptional minor already in progress",
			trains: &versioning.ActiveReleaseTrains{
				Next:             train("main", "18.1.0-next.0"),
				Latest:           train("17.3.x", "17.3.6"),
				ReleaseCandidate: train("18.0.x", "18.0.0-rc.0"),
				ExceptionalMinor: exceptionalTrain("17.4.x", "17.4.0-next.0"),
			},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Eligible(ActionPrepareExceptionalMinor, tc.trains))
		})
	}
}

func TestEligibleExceptionalMinorCuts(t *testing.T) {
	t.Parallel()

	trains := &versioning.ActiveReleaseTrains{
		Next:             train("main", "18.0.0-next.4"),
		Latest:           train("17.3.x", "17.3.9"),
		ExceptionalMinor: exceptionalTrain("17.4.x", "17.4.0-next.1"),
	}
	require.True(t, Eligible(ActionCutExceptionalMinorPrerelease, trains))
	require.True(t, Eligible(ActionCutExceptionalMinorReleaseCandidate, trains))

	// In rc phase the stable cut opens up and rc prereleases keep iterating,
	// but moving into rc phase again is gone.
	trains.ExceptionalMinor = exceptionalTrain("17.4.x", "17.4.0-rc.0")
	require.True(t, Eligible(ActionCutExceptionalMinorPrerelease, trains))
	require.False(t, Eligible(ActionCutExceptionalMinorReleaseCandidate, trains))
	require.True(t, Eligible(ActionCutStable, trains))
	require.Contains(t, EligibleActions(trains), ActionCutExceptionalMinorPrerelease)
}

func TestStableCutSourcePrefersReleaseCandidate(t *testing.T) {
	t.Parallel()

	trains := majorRcTrains()
	trains.ExceptionalMinor = exceptionalTrain("17.4.x", "17.4.0-rc.1")
	require.Equal(t, trains.ReleaseCandidate, stableCutSource(trains))

	trains.ReleaseCandidate = nil
	require.Equal(t, trains.ExceptionalMinor, stableCutSource(trains))
}

func TestEligibleTagRecentMajorAsLatest(t *testing.T) {
	t.Parallel()

	trains := &versioning.ActiveReleaseTrains{
		Next:   train("main", "19.0.0-next.0"),
		Latest: train("18.0.x", "18.0.0"),
	}
	require.True(t, Eligible(ActionTagRecentMajorAsLatest, trains))

	trains.Latest = train("18.0.x", "18.0.1")
	require.False(t, Eligible(ActionTagRecentMajorAsLatest, trains))
}

func TestEligibleActionsOrderingIsStable(t *testing.T) {
	t.Parallel()

	eligible := EligibleActions(majorRcTrains())
	require.Equal(t, eligible, EligibleActions(majorRcTrains()))
	require.Contains(t, eligible, ActionCutStable)
	require.Contains(t, eligible, ActionCutNewPatch)
}

func TestDescriptionIncludesComputedVersions(t *testing.T) {
	t.Parallel()

	trains := regularTrains()
	patch := &Action{Kind: ActionCutNewPatch, trains: trains}
	require.Contains(t, patch.Description(), "v17.0.5")
	require.Contains(t, patch.Description(), `"17.0.x"`)

	stable := &Action{Kind: ActionCutStable, trains: majorRcTrains()}
	require.Contains(t, stable.Description(), "v18.0.0")
}

func TestStableVersionOf(t *testing.T) {
	t.Parallel()

	stable, err := stableVersionOf(semver.MustParse("18.0.0-rc.2"))
	require.NoError(t, err)
	require.Equal(t, "18.0.0", stable.String())
}

func TestNextAsMajorVersion(t *testing.T) {
	t.Parallel()

	version, err := nextAsMajorVersion(semver.MustParse("17.2.0-next.1"))
	require.NoError(t, err)
	require.Equal(t, "18.0.0-next.0", version.String())
}

func TestExceptionalMinorVersion(t *testing.T) {
	t.Parallel()

	version, err := exceptionalMinorVersion(semver.MustParse("17.3.6"))
	require.NoError(t, err)
	require.Equal(t, "17.4.0-next.0", version.String())
}
