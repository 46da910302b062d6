package tui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplogQuietMode(t *testing.T) {
	t.Parallel()

	splog := NewSplog()
	defer func() { _ = splog.Close() }()

	require.False(t, splog.IsQuiet())
	splog.SetQuiet(true)
	require.True(t, splog.IsQuiet())

	// Suppressed while quiet; must not panic or write.
	splog.Info("hidden %s", "message")
	splog.Warn("hidden")
	splog.Error("hidden")
	splog.Tip("hidden")

	splog.SetQuiet(false)
	require.False(t, splog.IsQuiet())
}

func TestSplogWithFileLogging(t *testing.T) {
	logFile := t.TempDir() + "/relkit.log"

	splog, err := NewSplogWithConfig(logFile)
	require.NoError(t, err)

	splog.SetQuiet(true)
	splog.Info("file-only message")
	require.NoError(t, splog.Close())
}

func TestPromptsDisabledInTests(t *testing.T) {
	t.Setenv("RELKIT_TEST_NO_INTERACTIVE", "1")

	_, err := PromptTextInput("Title?", "")
	require.ErrorIs(t, err, ErrInteractiveDisabled)

	_, err = PromptConfirm("Continue?", true)
	require.ErrorIs(t, err, ErrInteractiveDisabled)

	_, err = PromptSelect("Pick one:", []SelectOption{{Label: "a", Value: "a"}}, 0)
	require.ErrorIs(t, err, ErrInteractiveDisabled)
}
