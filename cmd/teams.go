package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitchlab/go-match-highlights/internal/model"
	"github.com/pitchlab/go-match-highlights/internal/storage"
	"github.com/pitchlab/go-match-highlights/internal/teamcolor"
)

var (
	teamsMatchID string
	teamsHomeHue float64
	teamsAwayHue float64
)

var teamsCmd = &cobra.Command{
	Use:   "teams <track-metas.json>",
	Short: "Align tracked players to home/away by jersey hue and store the mapping",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeams,
}

func init() {
	teamsCmd.Flags().StringVar(&teamsMatchID, "match", "", "match identifier (required)")
	teamsCmd.Flags().Float64Var(&teamsHomeHue, "home-hue", 0, "home jersey reference hue in degrees")
	teamsCmd.Flags().Float64Var(&teamsAwayHue, "away-hue", 240, "away jersey reference hue in degrees")
	teamsCmd.MarkFlagRequired("match")
}

func runTeams(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read track metas: %w", err)
	}
	var metas []teamcolor.TrackMeta
	if err := json.Unmarshal(data, &metas); err != nil {
		return fmt.Errorf("decode track metas %s: %w", args[0], err)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	mappings := teamcolor.AssignTeams(metas, teamsHomeHue, teamsAwayHue)

	docs := make([]storage.Document, 0, len(metas)*2)
	for _, m := range metas {
		docs = append(docs, storage.Document{Collection: storage.CollectionTrackTeamMetas, DocID: m.TrackID, Body: m})
	}
	home := 0
	for _, m := range mappings {
		docs = append(docs, storage.Document{Collection: storage.CollectionTrackMappings, DocID: m.TrackID, Body: m})
		if m.Team == model.TeamHome {
			home++
		}
	}
	if err := db.WriteDocuments(teamsMatchID, docs); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Mapped %d tracks (%d home, %d away) for %s.\n",
		len(mappings), home, len(mappings)-home, teamsMatchID)
	return nil
}
