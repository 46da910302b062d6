package git

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"relkit.dev/relkit/testhelpers"
)

func TestHasUncommittedChanges(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	client := NewClient(scene.Dir)

	dirty, err := client.HasUncommittedChanges(context.Background())
	require.NoError(t, err)
	require.False(t, dirty)

	require.NoError(t, scene.Repo.WriteFile("pending.txt", "pending"))

	dirty, err = client.HasUncommittedChanges(context.Background())
	require.NoError(t, err)
	require.True(t, dirty)
}

func TestIsShallowRepo(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	client := NewClient(scene.Dir)

	shallow, err := client.IsShallowRepo(context.Background())
	require.NoError(t, err)
	require.False(t, shallow)
}

func TestCurrentBranchOrRevision(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	client := NewClient(scene.Dir)

	current, err := client.CurrentBranchOrRevision(context.Background())
	require.NoError(t, err)
	require.Equal(t, "main", current)

	// Detach HEAD and expect the SHA instead
	sha, err := scene.Repo.HeadSha()
	require.NoError(t, err)
	require.NoError(t, scene.Repo.RunGitCommand("checkout", "--detach", "HEAD"))

	current, err = client.CurrentBranchOrRevision(context.Background())
	require.NoError(t, err)
	require.Equal(t, sha, current)
}

func TestRunGracefulReportsExitStatus(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	client := NewClient(scene.Dir)

	result, err := client.RunGraceful(context.Background(), "rev-parse", "--verify", "no-such-ref")
	require.NoError(t, err)
	require.NotEqual(t, 0, result.Status)
}

func TestRunWithInput(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	client := NewClient(scene.Dir)

	sha, err := client.RunWithInput(context.Background(), "release notes draft", "hash-object", "-w", "--stdin")
	require.NoError(t, err)
	require.Len(t, sha, 40)

	content, err := client.Run(context.Background(), "cat-file", "-p", sha)
	require.NoError(t, err)
	require.Equal(t, "release notes draft", content)
}

func TestCheckoutAndBranching(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	client := NewClient(scene.Dir)
	ctx := context.Background()

	require.NoError(t, client.CheckoutNewBranch(ctx, "17.0.x"))
	current, err := client.CurrentBranchOrRevision(ctx)
	require.NoError(t, err)
	require.Equal(t, "17.0.x", current)

	require.NoError(t, client.Checkout(ctx, "main", false))
	require.NoError(t, client.DeleteBranch(ctx, "17.0.x"))
}
