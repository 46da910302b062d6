package versioning

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"
)

func TestSemverInc(t *testing.T) {
	t.Parallel()

	cases := []struct {
		version string
		release string
		preid   string
		want    string
	}{
		{"17.2.3", "patch", "", "17.2.4"},
		{"17.2.3", "minor", "", "17.3.0"},
		{"17.2.3", "major", "", "18.0.0"},
		{"17.0.0-next.4", "patch", "", "17.0.0"},
		{"17.0.0-next.4", "prerelease", "", "17.0.0-next.5"},
		{"17.2.3", "prerelease", "next", "17.2.4-next.0"},
	}

	for _, tc := range cases {
		got, err := SemverInc(semver.MustParse(tc.version), tc.release, tc.preid)
		require.NoError(t, err)
		require.Equal(t, tc.want, got.String(), "%s inc %s", tc.version, tc.release)
	}
}

func TestSemverIncUnsupportedRelease(t *testing.T) {
	t.Parallel()

	_, err := SemverInc(semver.MustParse("1.0.0"), "premajor", "")
	require.Error(t, err)
}

func TestWithPrereleaseID(t *testing.T) {
	t.Parallel()

	got, err := WithPrereleaseID(semver.MustParse("18.0.0-next.5"), "rc")
	require.NoError(t, err)
	require.Equal(t, "18.0.0-rc.0", got.String())
}

func TestComputeExperimentalVersion(t *testing.T) {
	t.Parallel()

	got, err := ComputeExperimentalVersion(semver.MustParse("17.2.3"))
	require.NoError(t, err)
	require.Equal(t, "0.1702.3", got.String())

	got, err = ComputeExperimentalVersion(semver.MustParse("18.0.0-rc.1"))
	require.NoError(t, err)
	require.Equal(t, "0.1800.0-rc.1", got.String())
}
