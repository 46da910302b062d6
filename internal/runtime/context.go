package runtime

import (
	"fmt"

	"relkit.dev/relkit/internal/config"
	"relkit.dev/relkit/internal/git"
	"relkit.dev/relkit/internal/github"
	"relkit.dev/relkit/internal/npm"
	"relkit.dev/relkit/internal/tui"
)

// Context provides access to the collaborator clients and the loaded release
// configuration. It is built once per CLI invocation and never mutated.
type Context struct {
	Splog      *tui.Splog
	ProjectDir string
	Config     *config.ReleaseConfig
	Git        *git.Client
	Github     github.Client
	Npm        *npm.Client
}

// GetContext discovers the repository root, loads the release configuration,
// and connects the collaborator clients.
func GetContext() (*Context, error) {
	repoRoot, err := git.NewClient(".").RepoRoot()
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	cfg, err := config.Load(repoRoot)
	if err != nil {
		return nil, err
	}

	ghClient, err := github.NewRealClient(cfg.Github.Owner, cfg.Github.Name)
	if err != nil {
		return nil, err
	}

	splog, err := tui.NewSplogWithConfig(tui.GetLogFilePath())
	if err != nil {
		// Console logging still works without a log file.
		splog = tui.NewSplog()
	}

	return &Context{
		Splog:      splog,
		ProjectDir: repoRoot,
		Config:     cfg,
		Git:        git.NewClient(repoRoot),
		Github:     ghClient,
		Npm:        npm.NewClient(repoRoot),
	}, nil
}
