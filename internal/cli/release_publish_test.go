package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"relkit.dev/relkit/internal/release"
)

func TestExitCodeForCompletionState(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, exitCodeFor(release.CompletionSuccess))
	require.Equal(t, 1, exitCodeFor(release.CompletionManuallyAborted))
	require.Equal(t, 2, exitCodeFor(release.CompletionFatalError))
}
