package cli

import (
	"os"

	"github.com/spf13/cobra"

	"relkit.dev/relkit/internal/release"
	"relkit.dev/relkit/internal/runtime"
)

// exitCodeFor maps a release completion state to the process exit code.
func exitCodeFor(state release.CompletionState) int {
	switch state {
	case release.CompletionManuallyAborted:
		return 1
	case release.CompletionFatalError:
		return 2
	default:
		return 0
	}
}

// newReleasePublishCmd creates the release publish command
func newReleasePublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Select and perform one release action for the active release trains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := runtime.GetContext()
			if err != nil {
				return err
			}

			state := release.NewTool(rt).Run(cmd.Context())

			// Flush the log file before exiting; os.Exit skips deferred calls.
			_ = rt.Splog.Close()
			os.Exit(exitCodeFor(state))
			return nil
		},
	}
}
