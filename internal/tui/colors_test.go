package tui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColorsPassThroughWithoutTTY(t *testing.T) {
	// Test binaries never run on a TTY, so styling must be a no-op and the
	// text must come back unchanged.
	t.Setenv("NO_COLOR", "1")

	require.Equal(t, "17.0.x", ColorBranchName("17.0.x"))
	require.Equal(t, "v17.0.4", ColorVersion("v17.0.4"))
	require.Equal(t, "failed", ColorRed("failed"))
	require.Equal(t, "done", ColorGreen("done"))
	require.Equal(t, "pending", ColorYellow("pending"))
	require.Equal(t, "https://example.com", ColorCyan("https://example.com"))
}
