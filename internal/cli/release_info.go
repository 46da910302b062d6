package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"relkit.dev/relkit/internal/runtime"
	"relkit.dev/relkit/internal/tui"
	"relkit.dev/relkit/internal/versioning"
)

// trainInfo is the JSON shape of one release train in `release info --json`.
type trainInfo struct {
	BranchName         string `json:"branchName"`
	Version            string `json:"version"`
	IsExceptionalMinor bool   `json:"isExceptionalMinor,omitempty"`
}

type trainsInfo struct {
	Next             trainInfo  `json:"next"`
	Latest           trainInfo  `json:"latest"`
	ReleaseCandidate *trainInfo `json:"releaseCandidate"`
	ExceptionalMinor *trainInfo `json:"exceptionalMinor"`
}

// newReleaseInfoCmd creates the release info command
func newReleaseInfoCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the currently active release trains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer func() { _ = rt.Splog.Close() }()

			trains, err := versioning.FetchActiveReleaseTrains(cmd.Context(), rt.Github, rt.Config)
			if err != nil {
				return err
			}

			if jsonOutput {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(toTrainsInfo(trains))
			}

			printTrain := func(label string, train *versioning.ReleaseTrain) {
				fmt.Printf("  %s: %s at %s\n", label,
					tui.ColorBranchName(train.BranchName),
					tui.ColorVersion("v"+train.Version.String()))
			}

			fmt.Println("Active release trains:")
			printTrain("next             ", trains.Next)
			printTrain("latest           ", trains.Latest)
			if trains.ReleaseCandidate != nil {
				printTrain("release candidate", trains.ReleaseCandidate)
			}
			if trains.ExceptionalMinor != nil {
				printTrain("exceptional minor", trains.ExceptionalMinor)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the active release trains as JSON")

	return cmd
}

func toTrainsInfo(trains *versioning.ActiveReleaseTrains) trainsInfo {
	convert := func(train *versioning.ReleaseTrain) *trainInfo {
		if train == nil {
			return nil
		}
		return &trainInfo{
			BranchName:         train.BranchName,
			Version:            train.Version.String(),
			IsExceptionalMinor: train.IsExceptionalMinor,
		}
	}
	return trainsInfo{
		Next:             *convert(trains.Next),
		Latest:           *convert(trains.Latest),
		ReleaseCandidate: convert(trains.ReleaseCandidate),
		ExceptionalMinor: convert(trains.ExceptionalMinor),
	}
}
