package release

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"

	relkiterrors "relkit.dev/relkit/internal/errors"
	"relkit.dev/relkit/internal/npm"
)

func writeBuiltPackage(t *testing.T, dir, version string) string {
	t.Helper()
	outputPath := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(outputPath, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(outputPath, "package.json"),
		[]byte(`{"name": "@acme/core", "version": "`+version+`"}`), 0o644))
	return outputPath
}

func TestVerifyBuiltPackageVersions(t *testing.T) {
	t.Parallel()

	action := &Action{}
	version := semver.MustParse("17.0.5")

	matching := writeBuiltPackage(t, t.TempDir(), "17.0.5")
	require.NoError(t, action.verifyBuiltPackageVersions(version, []BuiltPackage{
		{Name: "@acme/core", OutputPath: matching},
	}))

	stale := writeBuiltPackage(t, t.TempDir(), "17.0.4")
	err := action.verifyBuiltPackageVersions(version, []BuiltPackage{
		{Name: "@acme/core", OutputPath: stale},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, relkiterrors.ErrFatalReleaseAction))
	require.Contains(t, err.Error(), "stale")
}

func TestVerifyBuiltPackageVersionsExperimental(t *testing.T) {
	t.Parallel()

	action := &Action{}
	version := semver.MustParse("17.2.3")

	experimental := writeBuiltPackage(t, t.TempDir(), "0.1702.3")
	require.NoError(t, action.verifyBuiltPackageVersions(version, []BuiltPackage{
		{Name: "@acme/labs", OutputPath: experimental, Experimental: true},
	}))

	// An experimental package carrying the project version is a mismatch.
	wrong := writeBuiltPackage(t, t.TempDir(), "17.2.3")
	err := action.verifyBuiltPackageVersions(version, []BuiltPackage{
		{Name: "@acme/labs", OutputPath: wrong, Experimental: true},
	})
	require.Error(t, err)
}

func TestHighestVersionOfMajor(t *testing.T) {
	t.Parallel()

	info := &npm.PackageInfo{Versions: map[string]json.RawMessage{}}
	for _, v := range []string{"16.0.0", "16.2.9", "16.2.10", "17.0.0", "16.3.0-next.0"} {
		info.Versions[v] = nil
	}

	highest := highestVersionOfMajor(info, 16)
	require.NotNil(t, highest)
	require.Equal(t, "16.2.10", highest.String())

	require.Nil(t, highestVersionOfMajor(info, 15))
}
