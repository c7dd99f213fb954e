package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitchlab/go-match-highlights/internal/report"
	"github.com/pitchlab/go-match-highlights/internal/setpiece"
)

var (
	setpiecesMatchID string
	setpiecesWindow  float64
)

var setpiecesCmd = &cobra.Command{
	Use:   "setpieces",
	Short: "Print set-piece outcomes for a stored match",
	Args:  cobra.NoArgs,
	RunE:  runSetpieces,
}

func init() {
	setpiecesCmd.Flags().StringVar(&setpiecesMatchID, "match", "", "match identifier (required)")
	setpiecesCmd.Flags().Float64Var(&setpiecesWindow, "window", 0, "look-ahead seconds (0 = default)")
	setpiecesCmd.MarkFlagRequired("match")
}

func runSetpieces(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	timeline, err := loadTimeline(db, setpiecesMatchID)
	if err != nil {
		return err
	}
	outcomes := setpiece.Analyze(timeline, setpiecesWindow)
	if len(outcomes) == 0 {
		fmt.Fprintf(os.Stdout, "No set pieces detected for %s.\n", setpiecesMatchID)
		return nil
	}
	report.PrintSetPieceOutcomes(os.Stdout, outcomes)
	return nil
}
