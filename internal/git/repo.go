package git

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// Repository aliases the go-git repository type for commit-log reads.
type Repository = gogit.Repository

// OpenRepository opens the git repository containing the given directory.
func (c *Client) OpenRepository() (*Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(c.workingDir, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	return repo, nil
}

// RepoRoot returns the root directory of the git repository.
func (c *Client) RepoRoot() (string, error) {
	repo, err := c.OpenRepository()
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	return worktree.Filesystem.Root(), nil
}
