// Package testhelpers provides scene-based fixtures for tests that need a real
// git repository on disk.
package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitRepo represents a git repository created for a test.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new git repository in the specified directory.
func NewGitRepo(dir string) (*GitRepo, error) {
	repo := &GitRepo{Dir: dir}

	// Initialize with a fixed default branch and without reading global config
	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "-c", "core.autocrlf=false", "-c", "core.fileMode=false", "init", dir, "-b", "main")
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}

	// Configure git user (required for commits)
	if err := repo.RunGitCommand("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.RunGitCommand("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}

	return repo, nil
}

// RunGitCommand executes a git command in the repository directory.
// Uses GIT_CONFIG_GLOBAL=/dev/null to avoid reading global config for faster operations.
func (r *GitRepo) RunGitCommand(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if os.Getenv("DEBUG") == "" {
		cmd.Stdout = nil
		cmd.Stderr = nil
	}
	return cmd.Run()
}

// RunGitCommandAndGetOutput executes a git command and returns its trimmed output.
func (r *GitRepo) RunGitCommandAndGetOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git command failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// WriteFile writes a file relative to the repository root and stages it.
func (r *GitRepo) WriteFile(relPath, content string) error {
	filePath := filepath.Join(r.Dir, relPath)

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return r.RunGitCommand("add", filePath)
}

// Commit commits all staged changes with the given message.
func (r *GitRepo) Commit(message string) error {
	return r.RunGitCommand("commit", "--allow-empty", "-m", message)
}

// CommitChange writes a file change and commits it with the given message.
func (r *GitRepo) CommitChange(message string, relPath, content string) error {
	if err := r.WriteFile(relPath, content); err != nil {
		return err
	}
	return r.Commit(message)
}

// CheckoutBranch checks out an existing branch.
func (r *GitRepo) CheckoutBranch(branchName string) error {
	return r.RunGitCommand("checkout", branchName)
}

// CreateAndCheckoutBranch creates a new branch at HEAD and checks it out.
func (r *GitRepo) CreateAndCheckoutBranch(branchName string) error {
	return r.RunGitCommand("checkout", "-b", branchName)
}

// HeadSha returns the SHA of the repository HEAD.
func (r *GitRepo) HeadSha() (string, error) {
	return r.RunGitCommandAndGetOutput("rev-parse", "HEAD")
}
