package notes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"relkit.dev/relkit/internal/git"
)

func parse(message string) *Commit {
	return ParseCommit(git.RawCommit{SHA: "abc123", Message: message})
}

func TestParseCommitHeader(t *testing.T) {
	t.Parallel()

	commit := parse("fix(core): repair foo (#123)")
	require.Equal(t, "fix", commit.Type)
	require.Equal(t, "core", commit.Scope)
	require.Equal(t, "repair foo (#123)", commit.Description)
	require.Equal(t, 123, commit.PRNumber)
	require.Equal(t, "fix(core): repair foo (#123)", commit.Header)
}

func TestParseCommitWithoutScope(t *testing.T) {
	t.Parallel()

	commit := parse("docs: update readme")
	require.Equal(t, "docs", commit.Type)
	require.Empty(t, commit.Scope)
	require.Equal(t, "update readme", commit.Description)
}

func TestParseCommitFixupAndSquash(t *testing.T) {
	t.Parallel()

	fixup := parse("fixup! fix(core): repair foo")
	require.True(t, fixup.IsFixup)
	require.Equal(t, "fix(core): repair foo", fixup.Header)

	squash := parse("squash! fix(core): repair foo")
	require.True(t, squash.IsSquash)
	require.Equal(t, "fix(core): repair foo", squash.Header)

	// Flags keep a fixup distinct from the commit it targets.
	require.NotEqual(t, fixup.key(), parse("fix(core): repair foo").key())
}

func TestParseCommitRevert(t *testing.T) {
	t.Parallel()

	require.True(t, parse(`Revert "fix(core): repair foo"`).IsRevert)
	require.True(t, parse("revert: fix(core): repair foo").IsRevert)
	require.False(t, parse("fix(core): repair foo").IsRevert)
}

func TestParseCommitNotes(t *testing.T) {
	t.Parallel()

	commit := parse(`feat(compiler): new template engine

Some body text.

BREAKING CHANGE: the old template syntax
is no longer supported

DEPRECATED: legacy renderer will be removed`)

	require.Len(t, commit.BreakingChanges, 1)
	require.Contains(t, commit.BreakingChanges[0], "old template syntax")
	require.Contains(t, commit.BreakingChanges[0], "no longer supported")
	require.Len(t, commit.Deprecations, 1)
	require.Contains(t, commit.Deprecations[0], "legacy renderer")
}
