// Package npm provides the npm collaborator capability: authentication state,
// dist-tag management, publishing, and registry metadata queries.
package npm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	relkiterrors "relkit.dev/relkit/internal/errors"
)

// DefaultCommandTimeout is the default timeout for npm commands
const DefaultCommandTimeout = 5 * time.Minute

// Client runs npm CLI commands in a fixed working directory.
type Client struct {
	workingDir string
}

// NewClient creates a new npm client rooted at the given directory.
func NewClient(workingDir string) *Client {
	return &Client{workingDir: workingDir}
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "npm", args...)
	if c.workingDir != "" {
		cmd.Dir = c.workingDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", relkiterrors.NewGitCommandError("npm", args, stdout.String(), stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CheckIsLoggedIn reports whether npm is authenticated against the registry.
func (c *Client) CheckIsLoggedIn(ctx context.Context, registry string) (bool, error) {
	_, err := c.run(ctx, "whoami", "--registry", registry)
	if err != nil {
		// `npm whoami` exits non-zero when not authenticated.
		return false, nil
	}
	return true, nil
}

// StartInteractiveLogin runs `npm login` connected to the terminal.
func (c *Client) StartInteractiveLogin(ctx context.Context, registry string) error {
	cmd := exec.CommandContext(ctx, "npm", "login", "--registry", registry)
	if c.workingDir != "" {
		cmd.Dir = c.workingDir
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("npm login failed: %w", err)
	}
	return nil
}

// Logout removes npm authentication for the registry.
func (c *Client) Logout(ctx context.Context, registry string) error {
	_, err := c.run(ctx, "logout", "--registry", registry)
	return err
}

// SetDistTagForPackage points a dist-tag of a package at a published version.
func (c *Client) SetDistTagForPackage(ctx context.Context, packageName, tagName, version, registry string) error {
	_, err := c.run(ctx, "dist-tag", "add", fmt.Sprintf("%s@%s", packageName, version), tagName, "--registry", registry)
	return err
}

// DeleteDistTagForPackage removes a dist-tag from a package.
func (c *Client) DeleteDistTagForPackage(ctx context.Context, packageName, tagName, registry string) error {
	_, err := c.run(ctx, "dist-tag", "rm", packageName, tagName, "--registry", registry)
	return err
}

// Publish publishes a built package directory under the given dist-tag.
func (c *Client) Publish(ctx context.Context, outputPath, tagName, registry string) error {
	_, err := c.run(ctx, "publish", outputPath, "--access", "public", "--tag", tagName, "--registry", registry)
	return err
}
