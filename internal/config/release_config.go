// Package config provides repository configuration management,
// including reading and validating the relkit configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	relkiterrors "relkit.dev/relkit/internal/errors"
)

// ConfigFileName is the name of the relkit configuration file at the repo root.
const ConfigFileName = ".relkit.json"

// DefaultNpmRegistry is the registry packages are published to when none is configured.
const DefaultNpmRegistry = "https://registry.npmjs.org/"

// NpmPackage describes one publishable npm package of the project.
type NpmPackage struct {
	Name string `json:"name"`
	// Experimental packages are versioned on the 0.x experimental scheme and
	// published under experimental dist-tags.
	Experimental bool `json:"experimental,omitempty"`
}

// ReleaseNotesConfig configures release note generation.
type ReleaseNotesConfig struct {
	// HiddenScopes lists commit scopes that never appear in release notes.
	HiddenScopes []string `json:"hiddenScopes,omitempty"`
	// GroupOrder moves the listed group titles to the front of the rendered notes,
	// in the given order. Unlisted groups follow alphabetically.
	GroupOrder []string `json:"groupOrder,omitempty"`
	// UseReleaseTitle renders the caretaker-provided release title in the notes.
	UseReleaseTitle bool `json:"useReleaseTitle,omitempty"`
}

// GithubConfig identifies the GitHub repository releases are managed in.
type GithubConfig struct {
	Owner          string `json:"owner"`
	Name           string `json:"name"`
	MainBranchName string `json:"mainBranchName,omitempty"`
}

// ReleaseConfig is the full release configuration of a project. It is loaded once
// per CLI invocation and passed explicitly; it is never mutated afterwards.
type ReleaseConfig struct {
	Github GithubConfig `json:"github"`

	// RepresentativeNpmPackage is the package whose registry metadata stands in
	// for the whole project (version lookups, LTS dist-tags).
	RepresentativeNpmPackage string `json:"representativeNpmPackage"`

	NpmPackages []NpmPackage `json:"npmPackages"`

	PublishRegistry string `json:"publishRegistry,omitempty"`

	// BuildCommand is run by `relkit release build` and must print the built
	// package list as JSON on stdout.
	BuildCommand string `json:"buildCommand,omitempty"`

	// PrecheckCommand, when set, is run before publishing with the staged
	// release JSON on stdin.
	PrecheckCommand string `json:"precheckCommand,omitempty"`

	// RequiresMergeMode gates publishing on the repository merge-mode custom
	// property being configured for releases.
	RequiresMergeMode bool `json:"requiresMergeMode,omitempty"`

	ReleaseNotes ReleaseNotesConfig `json:"releaseNotes,omitempty"`
}

// MainBranch returns the configured main development branch, or "main" as default.
func (c *ReleaseConfig) MainBranch() string {
	if c.Github.MainBranchName != "" {
		return c.Github.MainBranchName
	}
	return "main"
}

// Registry returns the configured publish registry, or the default npm registry.
func (c *ReleaseConfig) Registry() string {
	if c.PublishRegistry != "" {
		return c.PublishRegistry
	}
	return DefaultNpmRegistry
}

// ContainsPackage reports whether the given package name is part of the release.
func (c *ReleaseConfig) ContainsPackage(name string) bool {
	for _, pkg := range c.NpmPackages {
		if pkg.Name == name {
			return true
		}
	}
	return false
}

// IsHiddenScope reports whether a commit scope is excluded from release notes.
func (c *ReleaseConfig) IsHiddenScope(scope string) bool {
	for _, hidden := range c.ReleaseNotes.HiddenScopes {
		if hidden == scope {
			return true
		}
	}
	return false
}

// Load reads and validates the release configuration at the repository root.
func Load(repoRoot string) (*ReleaseConfig, error) {
	configPath := filepath.Join(repoRoot, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, relkiterrors.NewConfigValidationError(
			fmt.Sprintf("unable to read %s", configPath), nil)
	}

	var cfg ReleaseConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, relkiterrors.NewConfigValidationError(
			fmt.Sprintf("unable to parse %s: %v", ConfigFileName, err), nil)
	}

	if errs := validate(&cfg); len(errs) > 0 {
		return nil, relkiterrors.NewConfigValidationError("invalid release configuration", errs)
	}

	return &cfg, nil
}

// validate collects all validation failures so the caretaker can fix them in one pass.
func validate(cfg *ReleaseConfig) []string {
	var errs []string

	if cfg.Github.Owner == "" || cfg.Github.Name == "" {
		errs = append(errs, "github.owner and github.name must be set")
	}
	if len(cfg.NpmPackages) == 0 {
		errs = append(errs, "no npm packages configured for release")
	}
	if cfg.RepresentativeNpmPackage == "" {
		errs = append(errs, "no representative npm package configured")
	} else if !cfg.ContainsPackage(cfg.RepresentativeNpmPackage) {
		errs = append(errs, fmt.Sprintf(
			"representative npm package %q is not in the npmPackages list", cfg.RepresentativeNpmPackage))
	} else {
		for _, pkg := range cfg.NpmPackages {
			if pkg.Name == cfg.RepresentativeNpmPackage && pkg.Experimental {
				errs = append(errs, "representative npm package must not be experimental")
			}
		}
	}

	return errs
}
