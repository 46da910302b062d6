package notes

import (
	"fmt"
	"os"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"
)

func entryFor(version string) string {
	return fmt.Sprintf("<a name=%q></a>\n# %s (2026-08-24)\n\n### core\ncontent for %s", version, version, version)
}

func TestChangelogRoundTrip(t *testing.T) {
	t.Parallel()

	changelog := NewChangelog(t.TempDir())
	versions := []string{"17.0.0", "17.0.1", "17.0.2"}

	// Prepending in ascending order leaves the newest entry first.
	for _, v := range versions {
		require.NoError(t, changelog.PrependEntry(entryFor(v)))
	}

	entries, err := changelog.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "17.0.2", entries[0].Version.String())
	require.Equal(t, "17.0.1", entries[1].Version.String())
	require.Equal(t, "17.0.0", entries[2].Version.String())
	for _, entry := range entries {
		require.Contains(t, entry.Content, "content for "+entry.Version.String())
	}

	data, err := os.ReadFile(changelog.FilePath())
	require.NoError(t, err)
	require.Contains(t, string(data), splitMarker)
}

func TestRemovePrereleaseEntriesForVersionIsIdempotent(t *testing.T) {
	t.Parallel()

	changelog := NewChangelog(t.TempDir())
	require.NoError(t, changelog.PrependEntry(entryFor("17.0.0-next.0")))
	require.NoError(t, changelog.PrependEntry(entryFor("17.0.0-rc.1")))
	require.NoError(t, changelog.PrependEntry(entryFor("16.2.5")))
	require.NoError(t, changelog.PrependEntry(entryFor("17.0.1-next.0")))

	version := semver.MustParse("17.0.0")
	require.NoError(t, changelog.RemovePrereleaseEntriesForVersion(version))

	entries, err := changelog.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "17.0.1-next.0", entries[0].Version.String())
	require.Equal(t, "16.2.5", entries[1].Version.String())

	firstPass, err := os.ReadFile(changelog.FilePath())
	require.NoError(t, err)

	require.NoError(t, changelog.RemovePrereleaseEntriesForVersion(version))
	secondPass, err := os.ReadFile(changelog.FilePath())
	require.NoError(t, err)
	require.Equal(t, string(firstPass), string(secondPass))
}

func TestMoveEntriesPriorToVersionToArchive(t *testing.T) {
	t.Parallel()

	changelog := NewChangelog(t.TempDir())
	require.NoError(t, changelog.PrependEntry(entryFor("15.2.9")))
	require.NoError(t, changelog.PrependEntry(entryFor("16.0.0")))
	require.NoError(t, changelog.PrependEntry(entryFor("17.0.0")))

	require.NoError(t, changelog.MoveEntriesPriorToVersionToArchive(semver.MustParse("16.0.0")))

	entries, err := changelog.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "17.0.0", entries[0].Version.String())
	require.Equal(t, "16.0.0", entries[1].Version.String())

	archived, err := changelog.ArchiveEntries()
	require.NoError(t, err)
	require.Len(t, archived, 1)
	require.Equal(t, "15.2.9", archived[0].Version.String())
}

func TestMoveEntriesPriorToVersionToArchiveNoOpWithoutMatches(t *testing.T) {
	t.Parallel()

	changelog := NewChangelog(t.TempDir())
	require.NoError(t, changelog.PrependEntry(entryFor("17.0.0")))

	require.NoError(t, changelog.MoveEntriesPriorToVersionToArchive(semver.MustParse("16.0.0")))

	_, err := os.Stat(changelog.ArchiveFilePath())
	require.True(t, os.IsNotExist(err))
}
