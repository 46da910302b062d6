package release

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"relkit.dev/relkit/internal/config"
	relkiterrors "relkit.dev/relkit/internal/errors"
)

func TestRunBuildCommandParsesPackageList(t *testing.T) {
	t.Parallel()

	cfg := &config.ReleaseConfig{
		BuildCommand: `echo '[{"name":"@acme/core","outputPath":"dist/core","experimental":false},{"name":"@acme/labs","outputPath":"dist/labs","experimental":true}]'`,
	}

	packages, err := RunBuildCommand(context.Background(), cfg, t.TempDir())
	require.NoError(t, err)
	require.Len(t, packages, 2)
	require.Equal(t, "@acme/core", packages[0].Name)
	require.Equal(t, "dist/core", packages[0].OutputPath)
	require.True(t, packages[1].Experimental)
}

func TestRunBuildCommandWithoutConfiguredCommand(t *testing.T) {
	t.Parallel()

	_, err := RunBuildCommand(context.Background(), &config.ReleaseConfig{}, t.TempDir())
	require.Error(t, err)
	require.True(t, errors.Is(err, relkiterrors.ErrFatalReleaseAction))
}

func TestRunBuildCommandInvalidOutput(t *testing.T) {
	t.Parallel()

	cfg := &config.ReleaseConfig{BuildCommand: `echo "not json"`}
	_, err := RunBuildCommand(context.Background(), cfg, t.TempDir())
	require.Error(t, err)
	require.True(t, errors.Is(err, relkiterrors.ErrFatalReleaseAction))
}

func TestRunPrecheckCommand(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"builtPackagesWithInfo":[],"newVersion":"17.0.1"}`)

	passing := &config.ReleaseConfig{PrecheckCommand: "cat > /dev/null"}
	require.NoError(t, RunPrecheckCommand(context.Background(), passing, t.TempDir(), payload))

	failing := &config.ReleaseConfig{PrecheckCommand: "exit 1"}
	err := RunPrecheckCommand(context.Background(), failing, t.TempDir(), payload)
	require.Error(t, err)
	require.True(t, errors.Is(err, relkiterrors.ErrPrecheck))

	// No configured precheck is a documented no-op.
	require.NoError(t, RunPrecheckCommand(context.Background(), &config.ReleaseConfig{}, t.TempDir(), payload))
}
