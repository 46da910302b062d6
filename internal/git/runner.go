// Package git provides a wrapper around git commands and go-git for repository operations.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	relkiterrors "relkit.dev/relkit/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// CommandResult holds the outcome of a non-throwing git invocation.
type CommandResult struct {
	Stdout string
	Stderr string
	Status int
}

// Client executes git commands in a fixed working directory. The release engine
// owns the working tree exclusively for the duration of an action; no other code
// path may check out branches concurrently.
type Client struct {
	workingDir string
}

// NewClient creates a new git client rooted at the given directory.
func NewClient(workingDir string) *Client {
	return &Client{workingDir: workingDir}
}

// Run executes a git command and returns its trimmed stdout. A non-zero exit
// status is returned as a GitCommandError.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	result, err := c.runInternal(ctx, "", args...)
	if err != nil {
		return "", err
	}
	if result.Status != 0 {
		return "", relkiterrors.NewGitCommandError("git", args, result.Stdout, result.Stderr, nil)
	}
	return strings.TrimSpace(result.Stdout), nil
}

// RunGraceful executes a git command and reports the raw outcome without
// treating a non-zero exit status as an error.
func (c *Client) RunGraceful(ctx context.Context, args ...string) (*CommandResult, error) {
	return c.runInternal(ctx, "", args...)
}

// RunWithInput executes a git command with the given stdin content.
func (c *Client) RunWithInput(ctx context.Context, input string, args ...string) (string, error) {
	result, err := c.runInternal(ctx, input, args...)
	if err != nil {
		return "", err
	}
	if result.Status != 0 {
		return "", relkiterrors.NewGitCommandError("git", args, result.Stdout, result.Stderr, nil)
	}
	return strings.TrimSpace(result.Stdout), nil
}

func (c *Client) runInternal(ctx context.Context, input string, args ...string) (*CommandResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workingDir != "" {
		cmd.Dir = c.workingDir
	}
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &CommandResult{
				Stdout: stdout.String(),
				Stderr: stderr.String(),
				Status: exitErr.ExitCode(),
			}, nil
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, relkiterrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), ctx.Err())
		}
		return nil, relkiterrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), err)
	}
	return &CommandResult{Stdout: stdout.String(), Stderr: stderr.String(), Status: 0}, nil
}

// Checkout checks out the given ref. When force is set, local modifications are
// discarded first.
func (c *Client) Checkout(ctx context.Context, ref string, force bool) error {
	args := []string{"checkout"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, "-q", ref)
	_, err := c.Run(ctx, args...)
	return err
}

// CheckoutNewBranch creates and checks out a new local branch at HEAD.
func (c *Client) CheckoutNewBranch(ctx context.Context, branchName string) error {
	_, err := c.Run(ctx, "checkout", "-q", "-b", branchName)
	return err
}

// DeleteBranch force-deletes a local branch. Errors are intentionally ignored
// by some callers during cleanup; use RunGraceful for those.
func (c *Client) DeleteBranch(ctx context.Context, branchName string) error {
	_, err := c.Run(ctx, "branch", "-q", "-D", branchName)
	return err
}

// FetchRef fetches a single ref from the given remote URL into FETCH_HEAD.
func (c *Client) FetchRef(ctx context.Context, repoURL, ref string) error {
	_, err := c.Run(ctx, "fetch", "-q", repoURL, ref)
	return err
}

// Push pushes a refspec to the given remote URL.
func (c *Client) Push(ctx context.Context, repoURL, refspec string) error {
	_, err := c.Run(ctx, "push", "-q", repoURL, refspec)
	return err
}

// CommitAll stages all tracked changes and commits with the given message.
func (c *Client) CommitAll(ctx context.Context, message string) error {
	_, err := c.Run(ctx, "commit", "-q", "--all", "--message", message)
	return err
}

// CreateTag creates an annotated tag at the given ref.
func (c *Client) CreateTag(ctx context.Context, tagName, ref string) error {
	_, err := c.Run(ctx, "tag", "-a", tagName, "--message", tagName, ref)
	return err
}

// HasUncommittedChanges reports whether the working tree has uncommitted changes.
func (c *Client) HasUncommittedChanges(ctx context.Context) (bool, error) {
	output, err := c.Run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return output != "", nil
}

// IsShallowRepo reports whether the repository is a shallow clone.
func (c *Client) IsShallowRepo(ctx context.Context) (bool, error) {
	output, err := c.Run(ctx, "rev-parse", "--is-shallow-repository")
	if err != nil {
		return false, err
	}
	return output == "true", nil
}

// CurrentBranchOrRevision returns the current branch name, or the HEAD SHA when
// in a detached-head state.
func (c *Client) CurrentBranchOrRevision(ctx context.Context) (string, error) {
	result, err := c.RunGraceful(ctx, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		return "", err
	}
	if result.Status == 0 {
		return strings.TrimSpace(result.Stdout), nil
	}
	return c.Run(ctx, "rev-parse", "HEAD")
}

// HeadSha returns the SHA of the current HEAD.
func (c *Client) HeadSha(ctx context.Context) (string, error) {
	return c.Run(ctx, "rev-parse", "HEAD")
}
