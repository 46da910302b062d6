// Package notes turns commit ranges into categorized release notes and manages
// the changelog files those notes are persisted in.
package notes

import (
	"regexp"
	"strings"

	"relkit.dev/relkit/internal/git"
)

// headerRegex matches a conventional commit header: "type(scope): description".
var headerRegex = regexp.MustCompile(`^(\w+)(?:\(([^)]*)\))?(!)?:\s*(.*)$`)

// prNumberRegex matches a trailing pull request reference in a header.
var prNumberRegex = regexp.MustCompile(`\(#(\d+)\)\s*$`)

const (
	fixupPrefix  = "fixup! "
	squashPrefix = "squash! "
	revertPrefix = "revert:"

	breakingChangeMarker = "BREAKING CHANGE:"
	deprecationMarker    = "DEPRECATED:"
)

// Commit is a parsed conventional commit as the release notes see it.
type Commit struct {
	SHA         string
	Header      string
	Type        string
	Scope       string
	Description string
	Body        string

	// BreakingChanges and Deprecations carry the note texts attached to the
	// commit; their presence forces the commit into the rendered notes even
	// for types that are normally hidden.
	BreakingChanges []string
	Deprecations    []string

	IsFixup  bool
	IsRevert bool
	IsSquash bool

	// PRNumber is the pull request referenced in the header, or 0.
	PRNumber int
}

// ParseCommit parses a raw commit message into the release-notes commit model.
// Fixup and squash prefixes are stripped from the header and recorded as flags
// so that an autosquash pair still matches on the underlying header.
func ParseCommit(raw git.RawCommit) *Commit {
	message := strings.ReplaceAll(raw.Message, "\r\n", "\n")
	lines := strings.SplitN(message, "\n", 2)
	header := strings.TrimSpace(lines[0])
	body := ""
	if len(lines) > 1 {
		body = strings.TrimSpace(lines[1])
	}

	commit := &Commit{SHA: raw.SHA, Body: body}

	for stripped := true; stripped; {
		stripped = false
		if strings.HasPrefix(header, fixupPrefix) {
			commit.IsFixup = true
			header = strings.TrimPrefix(header, fixupPrefix)
			stripped = true
		}
		if strings.HasPrefix(header, squashPrefix) {
			commit.IsSquash = true
			header = strings.TrimPrefix(header, squashPrefix)
			stripped = true
		}
	}
	commit.Header = header

	if strings.HasPrefix(strings.ToLower(header), revertPrefix) || strings.HasPrefix(header, `Revert "`) {
		commit.IsRevert = true
	}

	if match := headerRegex.FindStringSubmatch(header); match != nil {
		commit.Type = match[1]
		commit.Scope = match[2]
		commit.Description = strings.TrimSpace(match[4])
	} else {
		commit.Description = header
	}

	if match := prNumberRegex.FindStringSubmatch(header); match != nil {
		commit.PRNumber = atoiSafe(match[1])
	}

	commit.BreakingChanges = extractNotes(body, breakingChangeMarker)
	commit.Deprecations = extractNotes(body, deprecationMarker)

	return commit
}

// extractNotes collects the paragraphs introduced by the given marker. A note
// runs from the marker to the next blank line.
func extractNotes(body, marker string) []string {
	var result []string
	lines := strings.Split(body, "\n")
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, marker) {
			continue
		}
		note := []string{strings.TrimSpace(strings.TrimPrefix(trimmed, marker))}
		for i++; i < len(lines); i++ {
			line := strings.TrimSpace(lines[i])
			if line == "" {
				break
			}
			note = append(note, line)
		}
		result = append(result, strings.TrimSpace(strings.Join(note, "\n")))
	}
	return result
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// identityKey distinguishes commits for range de-duplication. Two commits with
// the same header but different fixup/revert/squash flags are distinct.
type identityKey struct {
	header   string
	isFixup  bool
	isRevert bool
	isSquash bool
}

func (c *Commit) key() identityKey {
	return identityKey{
		header:   c.Header,
		isFixup:  c.IsFixup,
		isRevert: c.IsRevert,
		isSquash: c.IsSquash,
	}
}
