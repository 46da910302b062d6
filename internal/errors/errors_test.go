package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFatalError(t *testing.T) {
	t.Parallel()

	err := NewFatalError("release output at %q is stale", "/tmp/dist")
	require.True(t, errors.Is(err, ErrFatalReleaseAction))
	require.False(t, errors.Is(err, ErrUserAborted))
	require.Contains(t, err.Error(), "/tmp/dist")
}

func TestFatalErrorThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("staging failed: %w", NewFatalError("CI is failing"))
	require.True(t, errors.Is(wrapped, ErrFatalReleaseAction))

	var fatal *FatalError
	require.True(t, errors.As(wrapped, &fatal))
	require.Equal(t, "CI is failing", fatal.Message)
}

func TestUserAbortedError(t *testing.T) {
	t.Parallel()

	err := NewUserAbortedError()
	require.True(t, errors.Is(err, ErrUserAborted))
	require.False(t, errors.Is(err, ErrFatalReleaseAction))
}

func TestConfigValidationError(t *testing.T) {
	t.Parallel()

	err := NewConfigValidationError("invalid release config", []string{
		"missing representative npm package",
		"no npm packages configured",
	})
	require.True(t, errors.Is(err, ErrConfigValidation))
	require.Contains(t, err.Error(), "missing representative npm package")
	require.Contains(t, err.Error(), "no npm packages configured")
}

func TestPrecheckError(t *testing.T) {
	t.Parallel()

	err := NewPrecheckError("")
	require.True(t, errors.Is(err, ErrPrecheck))
	require.Equal(t, "release precheck failed", err.Error())

	err = NewPrecheckError("payload size regression detected")
	require.Equal(t, "payload size regression detected", err.Error())
}

func TestGitCommandErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("exit status 128")
	err := NewGitCommandError("git", []string{"push", "origin"}, "", "remote rejected", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "remote rejected")
}
