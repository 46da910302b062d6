package tui

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLogFilePathHonorsEnvOverride(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "custom.log")
	t.Setenv("RELKIT_LOG_FILE", custom)

	require.Equal(t, custom, GetLogFilePath())
}

func TestGetLogFilePathDefaultsToHomeDir(t *testing.T) {
	t.Setenv("RELKIT_LOG_FILE", "")

	path := GetLogFilePath()
	require.Equal(t, "relkit.log", filepath.Base(path))
	require.Contains(t, path, filepath.Join(".relkit", "logs"))
}
