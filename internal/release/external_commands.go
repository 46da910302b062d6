package release

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/Masterminds/semver/v3"

	"relkit.dev/relkit/internal/config"
	relkiterrors "relkit.dev/relkit/internal/errors"
	"relkit.dev/relkit/internal/tui"
)

// BuiltPackage describes one compiled npm artifact produced by the release
// build, consumed by publish-time version and integrity checks.
type BuiltPackage struct {
	Name         string `json:"name"`
	OutputPath   string `json:"outputPath"`
	Experimental bool   `json:"experimental"`
}

// precheckPayload is the JSON handed to the precheck command on stdin.
type precheckPayload struct {
	BuiltPackagesWithInfo []BuiltPackage `json:"builtPackagesWithInfo"`
	NewVersion            string         `json:"newVersion"`
}

// ExternalCommands invokes the satellite CLI subcommands as child processes.
// Running build and prechecks in a separate process keeps the release engine
// isolated from whatever the project's build tooling loads.
type ExternalCommands struct {
	projectDir string
	cfg        *config.ReleaseConfig
	splog      *tui.Splog
}

// NewExternalCommands creates an external-command invoker for the project.
func NewExternalCommands(projectDir string, cfg *config.ReleaseConfig, splog *tui.Splog) *ExternalCommands {
	return &ExternalCommands{projectDir: projectDir, cfg: cfg, splog: splog}
}

// selfBinary returns the path of the running relkit binary for re-invocation.
func selfBinary() string {
	if path, err := os.Executable(); err == nil {
		return path
	}
	return "relkit"
}

func (e *ExternalCommands) runSelf(ctx context.Context, stdin []byte, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, selfBinary(), args...)
	cmd.Dir = e.projectDir
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), relkiterrors.NewGitCommandError("relkit", args, stdout.String(), stderr.String(), err)
	}
	return stdout.String(), nil
}

// InvokeReleaseBuild builds the release packages in a child process and returns
// the built package list.
func (e *ExternalCommands) InvokeReleaseBuild(ctx context.Context) ([]BuiltPackage, error) {
	e.splog.Info("Building release output.")

	output, err := e.runSelf(ctx, nil, "release", "build", "--json")
	if err != nil {
		return nil, relkiterrors.NewFatalError("release build failed: %v", err)
	}

	var packages []BuiltPackage
	if err := json.Unmarshal([]byte(output), &packages); err != nil {
		return nil, relkiterrors.NewFatalError("unable to parse release build output: %v", err)
	}

	e.splog.Info("Built %d release packages.", len(packages))
	return packages, nil
}

// InvokeReleasePrecheck runs the configured prechecks against the staged
// release in a child process. A non-zero exit reports a precheck rejection.
func (e *ExternalCommands) InvokeReleasePrecheck(ctx context.Context, newVersion *semver.Version, built []BuiltPackage) error {
	if e.cfg.PrecheckCommand == "" {
		e.splog.Debug("No precheck command configured. Skipping prechecks.")
		return nil
	}

	payload, err := json.Marshal(precheckPayload{
		BuiltPackagesWithInfo: built,
		NewVersion:            newVersion.String(),
	})
	if err != nil {
		return err
	}

	e.splog.Info("Running release prechecks.")
	if _, err := e.runSelf(ctx, payload, "release", "precheck"); err != nil {
		e.splog.Debug("Precheck invocation failed: %v", err)
		return relkiterrors.NewPrecheckError("release prechecks rejected the staged release")
	}

	e.splog.Info("Release prechecks passed.")
	return nil
}

// InvokeSetNpmDistTag points a dist-tag at a version for every configured
// package, through the satellite npm-dist-tag subcommand.
func (e *ExternalCommands) InvokeSetNpmDistTag(ctx context.Context, tagName string, version *semver.Version) error {
	if _, err := e.runSelf(ctx, nil, "release", "npm-dist-tag", "set", tagName, version.String()); err != nil {
		return relkiterrors.NewFatalError("unable to set npm dist-tag %q: %v", tagName, err)
	}
	return nil
}

// InvokeDeleteNpmDistTag removes a dist-tag from every configured package.
func (e *ExternalCommands) InvokeDeleteNpmDistTag(ctx context.Context, tagName string) error {
	if _, err := e.runSelf(ctx, nil, "release", "npm-dist-tag", "delete", tagName); err != nil {
		return relkiterrors.NewFatalError("unable to delete npm dist-tag %q: %v", tagName, err)
	}
	return nil
}

// InvokeYarnInstall refreshes node modules after checking out a different
// branch, so the build runs against the branch's own dependencies.
func (e *ExternalCommands) InvokeYarnInstall(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "yarn", "install", "--frozen-lockfile", "--non-interactive")
	cmd.Dir = e.projectDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("yarn install failed: %v\n%s", err, stderr.String())
	}
	return nil
}

// RunBuildCommand executes the project's configured build command and parses
// the built package list it prints. This is the in-process half of
// `relkit release build`.
func RunBuildCommand(ctx context.Context, cfg *config.ReleaseConfig, projectDir string) ([]BuiltPackage, error) {
	if cfg.BuildCommand == "" {
		return nil, relkiterrors.NewFatalError("no build command configured in %s", config.ConfigFileName)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", cfg.BuildCommand)
	cmd.Dir = projectDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, relkiterrors.NewFatalError("build command failed: %v\n%s", err, stderr.String())
	}

	var packages []BuiltPackage
	if err := json.Unmarshal(stdout.Bytes(), &packages); err != nil {
		return nil, relkiterrors.NewFatalError("build command printed invalid package JSON: %v", err)
	}
	return packages, nil
}

// RunPrecheckCommand pipes the staged release payload into the configured
// precheck command. This is the in-process half of `relkit release precheck`.
func RunPrecheckCommand(ctx context.Context, cfg *config.ReleaseConfig, projectDir string, payload []byte) error {
	if cfg.PrecheckCommand == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", cfg.PrecheckCommand)
	cmd.Dir = projectDir
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return relkiterrors.NewPrecheckError(stderr.String())
	}
	return nil
}
