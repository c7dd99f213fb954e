package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pitchlab/go-match-highlights/internal/clipwindow"
	"github.com/pitchlab/go-match-highlights/internal/model"
	"github.com/pitchlab/go-match-highlights/internal/storage"
)

var (
	suggestMatchID   string
	suggestMinute    float64
	suggestTotalMins float64
	suggestScoreDiff int
	suggestStore     bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest clip boundaries around a stored match's events",
	Args:  cobra.NoArgs,
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().StringVar(&suggestMatchID, "match", "", "match identifier (required)")
	suggestCmd.Flags().Float64Var(&suggestMinute, "minute", 0, "current match minute, for context boosts")
	suggestCmd.Flags().Float64Var(&suggestTotalMins, "total-minutes", 0, "expected full match length in minutes")
	suggestCmd.Flags().IntVar(&suggestScoreDiff, "score-diff", 0, "goal differential from the home side's view")
	suggestCmd.Flags().BoolVar(&suggestStore, "store", false, "persist the suggested clips")
	suggestCmd.MarkFlagRequired("match")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	timeline, err := loadTimeline(db, suggestMatchID)
	if err != nil {
		return err
	}
	if len(timeline) == 0 {
		fmt.Fprintf(os.Stdout, "No events stored for %s. Run 'highlights detect' first.\n", suggestMatchID)
		return nil
	}

	var matchCtx *model.MatchContext
	if suggestTotalMins > 0 {
		matchCtx = &model.MatchContext{
			MatchMinute:       suggestMinute,
			TotalMatchMinutes: suggestTotalMins,
			ScoreDifferential: suggestScoreDiff,
		}
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-10s  %9s  %9s  %9s  %s\n",
		"EVENT", "TYPE", "AT", "START", "END", "REASON")
	var docs []storage.Document
	for _, e := range timeline {
		w := clipwindow.Calculate(e, timeline, matchCtx)
		start := e.Timestamp - w.Before
		if start < 0 {
			start = 0
		}
		end := e.Timestamp + w.After
		fmt.Fprintf(os.Stdout, "%-10s  %-10s  %8.1fs  %8.1fs  %8.1fs  %s\n",
			e.ID, string(e.Type), e.Timestamp, start, end, w.Reason)

		if suggestStore {
			clip := model.Clip{ID: uuid.NewString(), StartTime: start, EndTime: end}
			docs = append(docs, storage.Document{
				Collection: storage.CollectionClips,
				DocID:      clip.ID,
				Body:       clip,
			})
		}
	}
	if len(docs) > 0 {
		if err := db.WriteDocuments(suggestMatchID, docs); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\nStored %d suggested clips for %s.\n", len(docs), suggestMatchID)
	}
	return nil
}
