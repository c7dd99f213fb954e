package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitchlab/go-match-highlights/internal/merger"
	"github.com/pitchlab/go-match-highlights/internal/model"
	"github.com/pitchlab/go-match-highlights/internal/report"
	"github.com/pitchlab/go-match-highlights/internal/storage"
)

var (
	mergeHalfDuration float64
	mergeOutputID     string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <first-match> <second-match>",
	Short: "Combine two per-half analyses into one full-match analysis",
	Args:  cobra.ExactArgs(2),
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().Float64Var(&mergeHalfDuration, "half-duration", 2700, "first-half length in seconds")
	mergeCmd.Flags().StringVar(&mergeOutputID, "out", "", "match id for the merged analysis (default <first>-full)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	firstID, secondID := args[0], args[1]
	outID := mergeOutputID
	if outID == "" {
		outID = firstID + "-full"
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	first, err := loadHalf(db, firstID)
	if err != nil {
		return err
	}
	second, err := loadHalf(db, secondID)
	if err != nil {
		return err
	}

	merged := merger.Merge(first, second, mergeHalfDuration)

	var docs []storage.Document
	for i, e := range merged.Events {
		docs = append(docs, storage.Document{
			Collection: storage.CollectionEvents,
			DocID:      fmt.Sprintf("evt-%04d", i),
			Body:       e,
		})
	}
	for _, s := range merged.Stats {
		docs = append(docs, storage.Document{
			Collection: storage.CollectionStats,
			DocID:      s.StatID,
			Body:       s,
		})
	}
	if err := db.WriteDocuments(outID, docs); err != nil {
		return err
	}
	if err := db.InsertMatch(model.MatchSummary{
		MatchID:         outID,
		Version:         "merged",
		Half:            0,
		DedupEventCount: len(merged.Events),
		AnalyzedAt:      time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Merged %s + %s → %s: %d events, %d stats.\n",
		firstID, secondID, outID, len(merged.Events), len(merged.Stats))
	if len(merged.Stats) > 0 {
		report.PrintMergedStats(os.Stdout, merged.Stats)
	}
	return nil
}

func loadHalf(db *storage.DB, matchID string) (merger.HalfAnalysis, error) {
	events, err := db.LoadEvents(matchID)
	if err != nil {
		return merger.HalfAnalysis{}, fmt.Errorf("load events for %s: %w", matchID, err)
	}
	stats, err := db.LoadStats(matchID)
	if err != nil {
		return merger.HalfAnalysis{}, fmt.Errorf("load stats for %s: %w", matchID, err)
	}
	return merger.HalfAnalysis{
		Events:   events,
		Timeline: model.TimelineFromEvents(events),
		Stats:    stats,
	}, nil
}
