package notes

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"relkit.dev/relkit/internal/config"
)

// visibleTypes are the commit types rendered in release notes. Commits of other
// types still appear when they carry breaking-change or deprecation notes.
var visibleTypes = map[string]bool{
	"feat": true,
	"fix":  true,
	"perf": true,
}

// prReferenceRegex matches pull request references like "#123" in rendered text.
var prReferenceRegex = regexp.MustCompile(`#(\d+)`)

// CommitGroup is a set of rendered commits sharing a scope.
type CommitGroup struct {
	Title   string
	Commits []*Commit
}

// renderContext carries everything the notes templates render from.
type renderContext struct {
	Version      string
	DateStamp    string
	Title        string
	Groups       []CommitGroup
	BreakingNote []noteEntry
	Deprecations []noteEntry
	CommitURL    func(sha string) string
}

// noteEntry is one breaking-change or deprecation note with its owning scope.
type noteEntry struct {
	Scope string
	Text  string
}

// newRenderContext filters, groups, and orders commits for rendering.
func newRenderContext(cfg *config.ReleaseConfig, version *semver.Version, title string, commits []*Commit, date time.Time) *renderContext {
	owner, repo := cfg.Github.Owner, cfg.Github.Name
	baseURL := fmt.Sprintf("https://github.com/%s/%s", owner, repo)

	visible := visibleCommits(cfg, commits)

	ctx := &renderContext{
		Version:   version.String(),
		DateStamp: BuildDateStamp(date),
		Title:     title,
		Groups:    groupCommits(visible, cfg.ReleaseNotes.GroupOrder),
		CommitURL: func(sha string) string {
			return fmt.Sprintf("%s/commit/%s", baseURL, shortSHA(sha))
		},
	}

	for _, commit := range visible {
		for _, note := range commit.BreakingChanges {
			ctx.BreakingNote = append(ctx.BreakingNote, noteEntry{Scope: commit.Scope, Text: note})
		}
		for _, note := range commit.Deprecations {
			ctx.Deprecations = append(ctx.Deprecations, noteEntry{Scope: commit.Scope, Text: note})
		}
	}

	return ctx
}

// visibleCommits applies the release-notes inclusion rule: visible type OR
// breaking/deprecation notes, and never a hidden scope.
func visibleCommits(cfg *config.ReleaseConfig, commits []*Commit) []*Commit {
	var result []*Commit
	for _, commit := range commits {
		if cfg.IsHiddenScope(commit.Scope) {
			continue
		}
		if !visibleTypes[commit.Type] && len(commit.BreakingChanges) == 0 && len(commit.Deprecations) == 0 {
			continue
		}
		result = append(result, commit)
	}
	return result
}

// groupCommits groups commits by scope, sorts groups alphabetically and commits
// by {type, description}, then moves any caretaker-ordered groups to the front
// in reverse iteration order.
func groupCommits(commits []*Commit, groupOrder []string) []CommitGroup {
	byScope := make(map[string][]*Commit)
	for _, commit := range commits {
		byScope[commit.Scope] = append(byScope[commit.Scope], commit)
	}

	groups := make([]CommitGroup, 0, len(byScope))
	for scope, scoped := range byScope {
		sort.Slice(scoped, func(i, j int) bool {
			if scoped[i].Type != scoped[j].Type {
				return scoped[i].Type < scoped[j].Type
			}
			return scoped[i].Description < scoped[j].Description
		})
		groups = append(groups, CommitGroup{Title: scope, Commits: scoped})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Title < groups[j].Title
	})

	for i := len(groupOrder) - 1; i >= 0; i-- {
		for j, group := range groups {
			if group.Title == groupOrder[i] {
				groups = append(groups[:j], groups[j+1:]...)
				groups = append([]CommitGroup{group}, groups...)
				break
			}
		}
	}

	return groups
}

// BuildDateStamp formats a date as it appears in changelog entry headings,
// zero-padded ("1970-11-05").
func BuildDateStamp(date time.Time) string {
	return date.UTC().Format("2006-01-02")
}

// ConvertPullRequestReferencesToLinks replaces "#123" references with markdown
// links to the repository's pull requests.
func ConvertPullRequestReferencesToLinks(cfg *config.ReleaseConfig, text string) string {
	return prReferenceRegex.ReplaceAllString(text, fmt.Sprintf(
		"[#$1](https://github.com/%s/%s/pull/$1)", cfg.Github.Owner, cfg.Github.Name))
}

func shortSHA(sha string) string {
	if len(sha) > 10 {
		return sha[:10]
	}
	return sha
}

func indentNote(text string) string {
	return strings.ReplaceAll(text, "\n", "\n  ")
}
