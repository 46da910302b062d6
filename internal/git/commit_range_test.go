package git

import (
	"testing"

	"github.com/stretchr/testify/require"

	"relkit.dev/relkit/testhelpers"
)

func TestCommitsInRange(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	client := NewClient(scene.Dir)

	base, err := scene.Repo.HeadSha()
	require.NoError(t, err)

	require.NoError(t, scene.Repo.CommitChange("fix(core): repair foo", "a.txt", "a"))
	require.NoError(t, scene.Repo.CommitChange("feat(core): add bar", "b.txt", "b"))

	commits, err := client.CommitsInRange(base, "main")
	require.NoError(t, err)
	require.Len(t, commits, 2)

	// Newest first
	require.Contains(t, commits[0].Message, "feat(core): add bar")
	require.Contains(t, commits[1].Message, "fix(core): repair foo")
	require.Equal(t, "Test User", commits[0].Author)
}

func TestCommitsInRangeExcludesBaseAncestors(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	client := NewClient(scene.Dir)

	require.NoError(t, scene.Repo.CommitChange("fix(core): shared", "shared.txt", "s"))
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("17.0.x"))
	require.NoError(t, scene.Repo.CommitChange("fix(core): branch only", "branch.txt", "b"))
	require.NoError(t, scene.Repo.CheckoutBranch("main"))
	require.NoError(t, scene.Repo.CommitChange("feat(core): main only", "main.txt", "m"))

	commits, err := client.CommitsInRange("17.0.x", "main")
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Contains(t, commits[0].Message, "feat(core): main only")
}

func TestCommitsInRangeEmptyBaseReturnsHistory(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	client := NewClient(scene.Dir)

	require.NoError(t, scene.Repo.CommitChange("fix(core): one", "one.txt", "1"))

	commits, err := client.CommitsInRange("", "main")
	require.NoError(t, err)
	require.Len(t, commits, 2)
}
