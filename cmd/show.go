package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitchlab/go-match-highlights/internal/model"
	"github.com/pitchlab/go-match-highlights/internal/report"
	"github.com/pitchlab/go-match-highlights/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <match-id-prefix>",
	Short: "Show a stored match's events and set-piece outcomes",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := db.GetMatchByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("find match: %w", err)
	}
	if summary == nil {
		return fmt.Errorf("no stored match starts with %q", args[0])
	}

	report.PrintMatchSummary(os.Stdout, *summary)

	events, err := db.LoadEvents(summary.MatchID)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if len(events) > 0 {
		report.PrintEventTable(os.Stdout, events)
	}

	outcomes, err := loadSetPieces(db, summary.MatchID)
	if err != nil {
		return err
	}
	if len(outcomes) > 0 {
		report.PrintSetPieceOutcomes(os.Stdout, outcomes)
	}

	if n, err := db.CountDocuments(summary.MatchID, storage.CollectionPendingReviews); err == nil && n > 0 {
		fmt.Fprintf(os.Stdout, "\n%d low-confidence events pending review.\n", n)
	}
	return nil
}

func loadSetPieces(db *storage.DB, matchID string) ([]model.SetPieceOutcome, error) {
	bodies, err := db.ListDocuments(matchID, storage.CollectionSetPieces)
	if err != nil {
		return nil, fmt.Errorf("load set pieces for %s: %w", matchID, err)
	}
	out := make([]model.SetPieceOutcome, 0, len(bodies))
	for _, b := range bodies {
		var o model.SetPieceOutcome
		if err := json.Unmarshal(b, &o); err != nil {
			return nil, fmt.Errorf("decode set piece for %s: %w", matchID, err)
		}
		out = append(out, o)
	}
	return out, nil
}
