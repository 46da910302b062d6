package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Scene represents a test scene with a temporary directory and git repository.
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene with a temporary directory and git
// repository. Cleanup is registered via t.Cleanup; the scene never changes the
// process working directory so scenes are safe under t.Parallel().
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	tmpDir := t.TempDir()

	repo, err := NewGitRepo(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create git repo: %v", err)
	}

	scene := &Scene{
		Dir:  tmpDir,
		Repo: repo,
	}

	if err := scene.writeDefaultConfigs(); err != nil {
		t.Fatalf("Failed to write config files: %v", err)
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	return scene
}

// writeDefaultConfigs writes a default release config and package.json.
func (s *Scene) writeDefaultConfigs() error {
	relkitConfig := `{
  "github": {"owner": "acme", "name": "widgets"},
  "representativeNpmPackage": "@acme/core",
  "npmPackages": [{"name": "@acme/core"}]
}
`
	if err := os.WriteFile(filepath.Join(s.Dir, ".relkit.json"), []byte(relkitConfig), 0600); err != nil {
		return err
	}

	packageJSON := `{
  "name": "@acme/core",
  "version": "0.0.0"
}
`
	return os.WriteFile(filepath.Join(s.Dir, "package.json"), []byte(packageJSON), 0600)
}

// BasicSceneSetup creates a scene with a single initial commit.
func BasicSceneSetup(scene *Scene) error {
	if err := scene.Repo.RunGitCommand("add", "-A"); err != nil {
		return err
	}
	return scene.Repo.Commit("initial commit")
}
