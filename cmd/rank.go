package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitchlab/go-match-highlights/internal/model"
	"github.com/pitchlab/go-match-highlights/internal/report"
	"github.com/pitchlab/go-match-highlights/internal/scoring"
	"github.com/pitchlab/go-match-highlights/internal/storage"
)

var (
	rankMatchID   string
	rankConfig    string
	rankTop       int
	rankMinScore  float64
	rankMinute    float64
	rankTotalMins float64
	rankScoreDiff int
)

var rankCmd = &cobra.Command{
	Use:   "rank <clips.json>",
	Short: "Match stored events against clips and rank them by importance",
	Args:  cobra.ExactArgs(1),
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().StringVar(&rankMatchID, "match", "", "match identifier (required)")
	rankCmd.Flags().StringVar(&rankConfig, "config", "", "path to YAML config")
	rankCmd.Flags().IntVar(&rankTop, "top", 0, "keep only the N best clips (0 = all)")
	rankCmd.Flags().Float64Var(&rankMinScore, "min-importance", 0, "drop clips scoring below this")
	rankCmd.Flags().Float64Var(&rankMinute, "minute", 0, "current match minute, for context boosts")
	rankCmd.Flags().Float64Var(&rankTotalMins, "total-minutes", 0, "expected full match length in minutes")
	rankCmd.Flags().IntVar(&rankScoreDiff, "score-diff", 0, "goal differential from the clip owner's view")
	rankCmd.MarkFlagRequired("match")
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(rankConfig)
	if err != nil {
		return err
	}
	clips, err := readClips(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	timeline, err := loadTimeline(db, rankMatchID)
	if err != nil {
		return err
	}
	if len(timeline) == 0 {
		fmt.Fprintf(os.Stdout, "No events stored for %s. Run 'highlights detect' first.\n", rankMatchID)
		return nil
	}

	var matchCtx *model.MatchContext
	if rankTotalMins > 0 {
		matchCtx = &model.MatchContext{
			MatchMinute:       rankMinute,
			TotalMatchMinutes: rankTotalMins,
			ScoreDifferential: rankScoreDiff,
		}
	}

	ranked := scoring.RankClips(clips, timeline, matchCtx, cfg.Matcher)
	if rankMinScore > 0 {
		ranked = scoring.FilterByImportance(ranked, rankMinScore)
	}
	ranked = scoring.TopN(ranked, rankTop)
	if len(ranked) == 0 {
		fmt.Fprintln(os.Stdout, "No clips passed the importance filter.")
		return nil
	}

	// Keep the ranked clips alongside the match for later show/merge runs.
	docs := make([]storage.Document, len(ranked))
	for i, r := range ranked {
		docs[i] = storage.Document{
			Collection: storage.CollectionClips,
			DocID:      r.Clip.ID,
			Body:       r,
		}
	}
	if err := db.WriteDocuments(rankMatchID, docs); err != nil {
		return err
	}

	report.PrintRankedClips(os.Stdout, ranked)
	return nil
}
