package release

import (
	"context"
	"errors"
	"fmt"

	relkiterrors "relkit.dev/relkit/internal/errors"
	"relkit.dev/relkit/internal/runtime"
	"relkit.dev/relkit/internal/tui"
	"relkit.dev/relkit/internal/versioning"
)

// CompletionState is the three-way outcome of a release tool run.
type CompletionState int

const (
	// CompletionSuccess means the selected action completed.
	CompletionSuccess CompletionState = iota
	// CompletionFatalError means an expected-but-unrecoverable condition or an
	// unexpected failure stopped the run.
	CompletionFatalError
	// CompletionManuallyAborted means the caretaker declined a confirmation.
	CompletionManuallyAborted
)

// mergeModeProperty is the repository custom property that marks the repo as
// configured for release merges.
const mergeModeProperty = "merge-mode"

// Tool orchestrates a release run: preflight checks, train discovery, action
// selection, execution, and working-tree restoration.
type Tool struct {
	rt *runtime.Context

	// loggedInDuringRun marks that the tool performed the npm login itself, so
	// it logs out again when the run finishes.
	loggedInDuringRun bool
}

// NewTool creates the release tool on top of the runtime context.
func NewTool(rt *runtime.Context) *Tool {
	return &Tool{rt: rt}
}

// Run executes one release action end to end and reports the completion state.
// This is the single point where action errors are mapped to an outcome; the
// working tree is always restored to the starting branch or revision.
func (t *Tool) Run(ctx context.Context) CompletionState {
	splog := t.rt.Splog

	startingRef, err := t.rt.Git.CurrentBranchOrRevision(ctx)
	if err != nil {
		splog.Error("Unable to determine the current branch: %v", err)
		return CompletionFatalError
	}
	defer t.restoreWorkingTree(startingRef)
	defer t.logoutIfToolLoggedIn()

	if state, ok := t.runPreflight(ctx); !ok {
		return state
	}

	trains, err := versioning.FetchActiveReleaseTrains(ctx, t.rt.Github, t.rt.Config)
	if err != nil {
		splog.Error("Unable to determine the active release trains: %v", err)
		return CompletionFatalError
	}
	t.printActiveTrains(trains)

	action, err := t.promptForAction(trains)
	if err != nil {
		return CompletionManuallyAborted
	}

	return t.completionStateOf(action.Perform(ctx))
}

// completionStateOf maps an action error to the three-way outcome.
func (t *Tool) completionStateOf(err error) CompletionState {
	splog := t.rt.Splog

	switch {
	case err == nil:
		splog.Info("%s", tui.ColorGreen("Release action completed successfully."))
		return CompletionSuccess
	case errors.Is(err, relkiterrors.ErrUserAborted):
		splog.Info("Release action has been manually aborted.")
		return CompletionManuallyAborted
	case errors.Is(err, relkiterrors.ErrFatalReleaseAction):
		// Expected failure modes are printed without a stack of wrapping.
		splog.Error("%v", err)
		return CompletionFatalError
	case errors.Is(err, relkiterrors.ErrPrecheck):
		splog.Debug("Precheck rejection: %v", err)
		splog.Error("Release prechecks rejected the staged release.")
		return CompletionFatalError
	default:
		splog.Error("Unexpected error while performing the release action: %+v", err)
		return CompletionFatalError
	}
}

// runPreflight verifies the environment before any mutation. The first failing
// check stops the run; only the npm login check is recoverable.
func (t *Tool) runPreflight(ctx context.Context) (CompletionState, bool) {
	splog := t.rt.Splog

	dirty, err := t.rt.Git.HasUncommittedChanges(ctx)
	if err != nil {
		splog.Error("Unable to inspect the working tree: %v", err)
		return CompletionFatalError, false
	}
	if dirty {
		splog.Error("There are uncommitted changes. Commit or stash them before releasing.")
		splog.Tip("Run `git stash` to put them aside and `git stash pop` afterwards.")
		return CompletionFatalError, false
	}

	mainBranch := t.rt.Config.MainBranch()
	localHead, err := t.rt.Git.HeadSha(ctx)
	if err != nil {
		splog.Error("Unable to determine the local HEAD: %v", err)
		return CompletionFatalError, false
	}
	remoteMain, err := t.rt.Github.GetBranch(ctx, mainBranch)
	if err != nil {
		splog.Error("Unable to read the remote %q branch: %v", mainBranch, err)
		return CompletionFatalError, false
	}
	if localHead != remoteMain.SHA {
		splog.Error("Local HEAD does not match the upstream %q branch. Check out the latest upstream state first.", mainBranch)
		return CompletionFatalError, false
	}

	if t.rt.Config.RequiresMergeMode {
		mergeMode, err := t.rt.Github.GetCustomProperty(ctx, mergeModeProperty)
		if err != nil {
			splog.Error("Unable to read the repository merge mode: %v", err)
			return CompletionFatalError, false
		}
		if mergeMode == "" {
			splog.Error("The repository is not configured for release merges (missing %q custom property).", mergeModeProperty)
			return CompletionFatalError, false
		}
	}

	shallow, err := t.rt.Git.IsShallowRepo(ctx)
	if err != nil {
		splog.Error("Unable to inspect the repository: %v", err)
		return CompletionFatalError, false
	}
	if shallow {
		splog.Error("Cannot release from a shallow clone. Use a full clone.")
		return CompletionFatalError, false
	}

	return t.verifyNpmLogin(ctx)
}

// verifyNpmLogin checks npm authentication and offers an interactive login.
// Declining the login is a manual abort, not an error.
func (t *Tool) verifyNpmLogin(ctx context.Context) (CompletionState, bool) {
	splog := t.rt.Splog
	registry := t.rt.Config.Registry()

	loggedIn, err := t.rt.Npm.CheckIsLoggedIn(ctx, registry)
	if err != nil {
		splog.Error("Unable to determine npm login state: %v", err)
		return CompletionFatalError, false
	}
	if loggedIn {
		return CompletionSuccess, true
	}

	splog.Warn("Not logged into the %q npm registry.", registry)
	confirmed, err := tui.PromptConfirm("Log in to npm now?", true)
	if err != nil || !confirmed {
		splog.Info("Release requires npm authentication. Aborting.")
		return CompletionManuallyAborted, false
	}
	if err := t.rt.Npm.StartInteractiveLogin(ctx, registry); err != nil {
		splog.Error("npm login failed: %v", err)
		return CompletionFatalError, false
	}
	t.loggedInDuringRun = true
	return CompletionSuccess, true
}

// logoutIfToolLoggedIn reverses a login performed by the tool itself. A login
// the caretaker already had before the run is left untouched.
func (t *Tool) logoutIfToolLoggedIn() {
	if !t.loggedInDuringRun {
		return
	}
	if err := t.rt.Npm.Logout(context.Background(), t.rt.Config.Registry()); err != nil {
		t.rt.Splog.Warn("Unable to log out of npm: %v", err)
	}
}

// promptForAction lets the caretaker pick one of the eligible actions.
func (t *Tool) promptForAction(trains *versioning.ActiveReleaseTrains) (*Action, error) {
	eligible := EligibleActions(trains)
	if len(eligible) == 0 {
		return nil, fmt.Errorf("no release action is eligible for the current release trains")
	}

	options := make([]tui.SelectOption, 0, len(eligible))
	for _, kind := range eligible {
		action := NewAction(kind, t.rt, trains)
		options = append(options, tui.SelectOption{Label: action.Description(), Value: string(kind)})
	}

	selected, err := tui.PromptSelect("Please select the action you want to perform:", options, 0)
	if err != nil {
		return nil, err
	}
	return NewAction(ActionKind(selected), t.rt, trains), nil
}

// printActiveTrains summarizes the current train constellation for the caretaker.
func (t *Tool) printActiveTrains(trains *versioning.ActiveReleaseTrains) {
	splog := t.rt.Splog

	splog.Info("Current active release trains:")
	splog.Info("  • %s (next) is at %s", tui.ColorBranchName(trains.Next.BranchName),
		tui.ColorVersion("v"+trains.Next.Version.String()))
	splog.Info("  • %s (latest) is at %s", tui.ColorBranchName(trains.Latest.BranchName),
		tui.ColorVersion("v"+trains.Latest.Version.String()))
	if trains.ReleaseCandidate != nil {
		splog.Info("  • %s (release candidate) is at %s", tui.ColorBranchName(trains.ReleaseCandidate.BranchName),
			tui.ColorVersion("v"+trains.ReleaseCandidate.Version.String()))
	}
	if trains.ExceptionalMinor != nil {
		splog.Info("  • %s (exceptional minor) is at %s", tui.ColorBranchName(trains.ExceptionalMinor.BranchName),
			tui.ColorVersion("v"+trains.ExceptionalMinor.Version.String()))
	}
	splog.Newline()
}

// restoreWorkingTree checks the starting branch or revision back out. Failures
// here are reported but never override the run outcome.
func (t *Tool) restoreWorkingTree(startingRef string) {
	if err := t.rt.Git.Checkout(context.Background(), startingRef, true); err != nil {
		t.rt.Splog.Warn("Unable to restore the working tree to %q: %v", startingRef, err)
	}
}
