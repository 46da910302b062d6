package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// ChangelogFileName is the changelog at the repository root.
	ChangelogFileName = "CHANGELOG.md"
	// ChangelogArchiveFileName holds entries that fell out of the support window.
	ChangelogArchiveFileName = "CHANGELOG_ARCHIVE.md"

	// splitMarker separates entries in the changelog files. The literal text is
	// part of the persisted format and must never change.
	splitMarker = "<!-- CHANGELOG SPLIT MARKER -->"
)

// anchorRegex recovers an entry's version from its leading HTML anchor.
var anchorRegex = regexp.MustCompile(`<a name="(.*)"></a>`)

// ChangelogEntry is one parsed entry of a changelog file.
type ChangelogEntry struct {
	Version *semver.Version
	Content string
}

// Changelog reads and mutates the changelog files of a repository.
type Changelog struct {
	repoRoot string
}

// NewChangelog returns a changelog rooted at the given repository directory.
func NewChangelog(repoRoot string) *Changelog {
	return &Changelog{repoRoot: repoRoot}
}

// FilePath returns the path of CHANGELOG.md.
func (c *Changelog) FilePath() string {
	return filepath.Join(c.repoRoot, ChangelogFileName)
}

// ArchiveFilePath returns the path of CHANGELOG_ARCHIVE.md.
func (c *Changelog) ArchiveFilePath() string {
	return filepath.Join(c.repoRoot, ChangelogArchiveFileName)
}

// PrependEntry inserts a rendered entry at the top of CHANGELOG.md.
func (c *Changelog) PrependEntry(entry string) error {
	entries, err := c.Entries()
	if err != nil {
		return err
	}
	parsed, err := parseEntry(entry)
	if err != nil {
		return err
	}
	return c.writeEntries(c.FilePath(), append([]ChangelogEntry{parsed}, entries...))
}

// Entries parses CHANGELOG.md into its entries, newest first. A missing file
// yields no entries.
func (c *Changelog) Entries() ([]ChangelogEntry, error) {
	return readEntries(c.FilePath())
}

// ArchiveEntries parses CHANGELOG_ARCHIVE.md into its entries.
func (c *Changelog) ArchiveEntries() ([]ChangelogEntry, error) {
	return readEntries(c.ArchiveFilePath())
}

// RemovePrereleaseEntriesForVersion deletes every entry whose version is a
// prerelease of the exact version being finalized. Running it again after the
// prereleases are gone is a no-op.
func (c *Changelog) RemovePrereleaseEntriesForVersion(version *semver.Version) error {
	entries, err := c.Entries()
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, entry := range entries {
		if entry.Version.Prerelease() != "" &&
			entry.Version.Major() == version.Major() &&
			entry.Version.Minor() == version.Minor() &&
			entry.Version.Patch() == version.Patch() {
			continue
		}
		kept = append(kept, entry)
	}

	return c.writeEntries(c.FilePath(), kept)
}

// MoveEntriesPriorToVersionToArchive relocates every entry older than the given
// version into CHANGELOG_ARCHIVE.md, preserving relative order. With nothing to
// move, neither file is touched.
func (c *Changelog) MoveEntriesPriorToVersionToArchive(version *semver.Version) error {
	entries, err := c.Entries()
	if err != nil {
		return err
	}

	var kept, moved []ChangelogEntry
	for _, entry := range entries {
		if entry.Version.LessThan(version) {
			moved = append(moved, entry)
		} else {
			kept = append(kept, entry)
		}
	}
	if len(moved) == 0 {
		return nil
	}

	archived, err := c.ArchiveEntries()
	if err != nil {
		return err
	}

	if err := c.writeEntries(c.ArchiveFilePath(), append(moved, archived...)); err != nil {
		return err
	}
	return c.writeEntries(c.FilePath(), kept)
}

func (c *Changelog) writeEntries(path string, entries []ChangelogEntry) error {
	blocks := make([]string, 0, len(entries))
	for _, entry := range entries {
		blocks = append(blocks, strings.TrimSpace(entry.Content))
	}
	content := strings.Join(blocks, "\n\n"+splitMarker+"\n\n")
	if content != "" {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func readEntries(path string) ([]ChangelogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}

	var entries []ChangelogEntry
	for _, block := range strings.Split(string(data), splitMarker) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		entry, err := parseEntry(block)
		if err != nil {
			return nil, fmt.Errorf("invalid entry in %s: %w", path, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseEntry(content string) (ChangelogEntry, error) {
	match := anchorRegex.FindStringSubmatch(content)
	if match == nil {
		return ChangelogEntry{}, fmt.Errorf("changelog entry has no version anchor")
	}
	version, err := semver.NewVersion(match[1])
	if err != nil {
		return ChangelogEntry{}, fmt.Errorf("changelog entry has invalid version %q: %w", match[1], err)
	}
	return ChangelogEntry{Version: version, Content: strings.TrimSpace(content)}, nil
}
