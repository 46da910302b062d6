// Package errors provides sentinel errors and custom error types for the relkit application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrFatalReleaseAction indicates an expected but unrecoverable release failure
	ErrFatalReleaseAction = errors.New("fatal release action error")

	// ErrUserAborted indicates the caretaker declined a confirmation prompt
	ErrUserAborted = errors.New("manually aborted")

	// ErrConfigValidation indicates an invalid or missing configuration
	ErrConfigValidation = errors.New("invalid configuration")

	// ErrPrecheck indicates a release precheck rejected the staged release
	ErrPrecheck = errors.New("release precheck failed")
)

// FatalError represents an expected-but-unrecoverable condition discovered while
// performing a release action (failing CI, version mismatch after build, branch
// collision after exhausting retries). It is reported without a stack trace.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string {
	return e.Message
}

// Is returns true if the target error is ErrFatalReleaseAction
func (e *FatalError) Is(target error) bool {
	return target == ErrFatalReleaseAction
}

// NewFatalError creates a new FatalError
func NewFatalError(format string, args ...interface{}) *FatalError {
	return &FatalError{Message: fmt.Sprintf(format, args...)}
}

// UserAbortedError represents a clean cancellation by the caretaker. It is not an
// error condition and is never printed as one.
type UserAbortedError struct{}

func (e *UserAbortedError) Error() string {
	return "release action manually aborted"
}

// Is returns true if the target error is ErrUserAborted
func (e *UserAbortedError) Is(target error) bool {
	return target == ErrUserAborted
}

// NewUserAbortedError creates a new UserAbortedError
func NewUserAbortedError() *UserAbortedError {
	return &UserAbortedError{}
}

// ConfigValidationError represents a missing or malformed configuration file.
// It is surfaced at startup and never retried.
type ConfigValidationError struct {
	Message string
	Errors  []string
}

func (e *ConfigValidationError) Error() string {
	msg := e.Message
	for _, errMsg := range e.Errors {
		msg += fmt.Sprintf("\n  - %s", errMsg)
	}
	return msg
}

// Is returns true if the target error is ErrConfigValidation
func (e *ConfigValidationError) Is(target error) bool {
	return target == ErrConfigValidation
}

// NewConfigValidationError creates a new ConfigValidationError
func NewConfigValidationError(message string, errs []string) *ConfigValidationError {
	return &ConfigValidationError{Message: message, Errors: errs}
}

// PrecheckError represents a caretaker-customizable precheck rejection. The
// message is expected to already be informative.
type PrecheckError struct {
	Message string
}

func (e *PrecheckError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "release precheck failed"
}

// Is returns true if the target error is ErrPrecheck
func (e *PrecheckError) Is(target error) bool {
	return target == ErrPrecheck
}

// NewPrecheckError creates a new PrecheckError
func NewPrecheckError(message string) *PrecheckError {
	return &PrecheckError{Message: message}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("%s command failed", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
