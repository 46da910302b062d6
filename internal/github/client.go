// Package github provides a client for interacting with the GitHub API.
package github

import (
	"context"
)

// BranchInfo describes a branch of the managed repository.
type BranchInfo struct {
	Name      string
	SHA       string
	Protected bool
}

// PullRequestInfo contains information about a pull request.
// This is a simplified struct to avoid coupling to the go-github library.
type PullRequestInfo struct {
	Number  int
	HTMLURL string
	State   string
	Merged  bool
}

// CreatePROptions contains options for creating a pull request.
type CreatePROptions struct {
	Title string
	Body  string
	Head  string // "owner:branch" for cross-fork PRs
	Base  string
	Draft bool
}

// ReleaseOptions contains options for creating a GitHub release entry.
type ReleaseOptions struct {
	TagName    string
	Name       string
	Body       string
	Prerelease bool
}

// ForkInfo identifies a fork of the managed repository.
type ForkInfo struct {
	Owner string
	Name  string
}

// CIStatus is the combined check/status outcome for a ref.
type CIStatus struct {
	Passing bool
	Pending bool
}

// Client is an interface for GitHub API interactions used by the release engine.
type Client interface {
	// ListBranches lists all branches of the repository (paginated internally).
	ListBranches(ctx context.Context) ([]BranchInfo, error)

	// GetBranch returns a single branch, or an error if it does not exist.
	GetBranch(ctx context.Context, branchName string) (*BranchInfo, error)

	// GetFileContents reads a file's content at the given ref.
	GetFileContents(ctx context.Context, ref, path string) ([]byte, error)

	// GetCIStatus returns the combined check/status outcome for a ref.
	GetCIStatus(ctx context.Context, ref string) (*CIStatus, error)

	// CreatePullRequest creates a new pull request.
	CreatePullRequest(ctx context.Context, opts CreatePROptions) (*PullRequestInfo, error)

	// GetPullRequest returns the current state of a pull request.
	GetPullRequest(ctx context.Context, number int) (*PullRequestInfo, error)

	// FindOwnedFork returns the authenticated user's fork of the repository.
	FindOwnedFork(ctx context.Context) (*ForkInfo, error)

	// CreateRelease creates a GitHub release entry.
	CreateRelease(ctx context.Context, opts ReleaseOptions) error

	// GetCustomProperty reads a repository custom property value, or "" when unset.
	GetCustomProperty(ctx context.Context, name string) (string, error)

	// GetOwnerRepo returns the repository owner and name.
	GetOwnerRepo() (owner, repo string)

	// RepositoryGitURL returns an authenticated HTTPS URL for git push/fetch
	// against the given repository.
	RepositoryGitURL(owner, repo string) string
}
