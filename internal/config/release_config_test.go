package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	relkiterrors "relkit.dev/relkit/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0600))
	return dir
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("reads a valid config", func(t *testing.T) {
		t.Parallel()
		dir := writeConfig(t, `{
			"github": {"owner": "acme", "name": "widgets"},
			"representativeNpmPackage": "@acme/core",
			"npmPackages": [
				{"name": "@acme/core"},
				{"name": "@acme/labs", "experimental": true}
			],
			"releaseNotes": {"hiddenScopes": ["docs-infra"]}
		}`)

		cfg, err := Load(dir)
		require.NoError(t, err)
		require.Equal(t, "acme", cfg.Github.Owner)
		require.Equal(t, "main", cfg.MainBranch())
		require.Equal(t, DefaultNpmRegistry, cfg.Registry())
		require.True(t, cfg.ContainsPackage("@acme/labs"))
		require.False(t, cfg.ContainsPackage("@acme/unknown"))
		require.True(t, cfg.IsHiddenScope("docs-infra"))
		require.False(t, cfg.IsHiddenScope("core"))
	})

	t.Run("fails when the config file is missing", func(t *testing.T) {
		t.Parallel()
		_, err := Load(t.TempDir())
		require.True(t, errors.Is(err, relkiterrors.ErrConfigValidation))
	})

	t.Run("fails when the representative package is not listed", func(t *testing.T) {
		t.Parallel()
		dir := writeConfig(t, `{
			"github": {"owner": "acme", "name": "widgets"},
			"representativeNpmPackage": "@acme/core",
			"npmPackages": [{"name": "@acme/other"}]
		}`)

		_, err := Load(dir)
		require.True(t, errors.Is(err, relkiterrors.ErrConfigValidation))
		require.Contains(t, err.Error(), "@acme/core")
	})

	t.Run("fails when the representative package is experimental", func(t *testing.T) {
		t.Parallel()
		dir := writeConfig(t, `{
			"github": {"owner": "acme", "name": "widgets"},
			"representativeNpmPackage": "@acme/labs",
			"npmPackages": [{"name": "@acme/labs", "experimental": true}]
		}`)

		_, err := Load(dir)
		require.True(t, errors.Is(err, relkiterrors.ErrConfigValidation))
		require.Contains(t, err.Error(), "must not be experimental")
	})

	t.Run("respects configured main branch and registry", func(t *testing.T) {
		t.Parallel()
		dir := writeConfig(t, `{
			"github": {"owner": "acme", "name": "widgets", "mainBranchName": "master"},
			"representativeNpmPackage": "@acme/core",
			"npmPackages": [{"name": "@acme/core"}],
			"publishRegistry": "https://registry.acme.dev/"
		}`)

		cfg, err := Load(dir)
		require.NoError(t, err)
		require.Equal(t, "master", cfg.MainBranch())
		require.Equal(t, "https://registry.acme.dev/", cfg.Registry())
	})
}
