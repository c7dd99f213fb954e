package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pitchlab/go-match-highlights/internal/dedup"
	"github.com/pitchlab/go-match-highlights/internal/model"
	"github.com/pitchlab/go-match-highlights/internal/scoring"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintMatchSummary prints a one-line summary header for a stored match.
func PrintMatchSummary(w io.Writer, s model.MatchSummary) {
	half := "full"
	if s.Half > 0 {
		half = fmt.Sprintf("half %d", s.Half)
	}
	fmt.Fprintf(w, "\nMatch: %s  |  Version: %s  |  %s  |  Windows: %d  |  Events: %d raw / %d merged  |  Analyzed: %s\n\n",
		s.MatchID, s.Version, half, s.WindowCount, s.RawEventCount, s.DedupEventCount, s.AnalyzedAt)
}

// PrintMatchList writes the stored-match table.
func PrintMatchList(w io.Writer, matches []model.MatchSummary) {
	table := newTable(w)
	table.Header("MATCH", "VERSION", "HALF", "WINDOWS", "RAW", "MERGED", "ANALYZED")
	for _, s := range matches {
		half := "full"
		if s.Half > 0 {
			half = strconv.Itoa(s.Half)
		}
		table.Append(
			s.MatchID,
			s.Version,
			half,
			strconv.Itoa(s.WindowCount),
			strconv.Itoa(s.RawEventCount),
			strconv.Itoa(s.DedupEventCount),
			s.AnalyzedAt,
		)
	}
	table.Render()
}

// PrintEventTable writes the deduplicated-event table for one match.
func PrintEventTable(w io.Writer, events []model.DeduplicatedEvent) {
	table := newTable(w)
	table.Header("TIME", "TYPE", "TEAM", "ZONE", "CONF", "ADJ", "WINDOWS")
	for _, e := range events {
		zone := e.Zone
		if zone == "" {
			zone = "—"
		}
		table.Append(
			fmt.Sprintf("%.1fs", e.AbsoluteTimestamp),
			string(e.Type),
			string(e.Team),
			zone,
			fmt.Sprintf("%.2f", e.Confidence),
			fmt.Sprintf("%.2f", e.AdjustedConfidence),
			strconv.Itoa(len(e.MergedFromWindows)),
		)
	}
	table.Render()
}

// PrintRankedClips writes the importance ranking table.
func PrintRankedClips(w io.Writer, ranked []scoring.RankedClip) {
	table := newTable(w)
	table.Header("RANK", "CLIP", "START", "END", "SCORE", "BASE", "TYPE", "CTX", "RARITY", "MATCHES")
	for i, r := range ranked {
		table.Append(
			strconv.Itoa(i+1),
			r.Clip.ID,
			fmt.Sprintf("%.1fs", r.Clip.StartTime),
			fmt.Sprintf("%.1fs", r.Clip.EndTime),
			fmt.Sprintf("%.3f", r.Factors.FinalImportance),
			fmt.Sprintf("%.3f", r.Factors.BaseImportance),
			fmt.Sprintf("%.3f", r.Factors.EventTypeBoost),
			fmt.Sprintf("%.3f", r.Factors.ContextBoost),
			fmt.Sprintf("%.3f", r.Factors.RarityBoost),
			strconv.Itoa(len(r.Matches)),
		)
	}
	table.Render()
}

// PrintDedupStats writes the per-kind deduplication statistics table.
func PrintDedupStats(w io.Writer, s dedup.Stats) {
	fmt.Fprintf(w, "\n%d raw → %d events (%d merged clusters, %d unique, avg cluster %.2f)\n\n",
		s.TotalRawEvents, s.TotalDeduplicatedEvents, s.MergedCount, s.UniqueCount, s.AverageClusterSize)

	table := newTable(w)
	table.Header("TYPE", "RAW", "MERGED", "CLUSTERS")
	for _, typ := range []model.EventType{
		model.EventPass, model.EventCarry, model.EventTurnover,
		model.EventShot, model.EventSetPiece,
	} {
		ts, ok := s.ByType[typ]
		if !ok {
			continue
		}
		table.Append(
			string(typ),
			strconv.Itoa(ts.Raw),
			strconv.Itoa(ts.Deduplicated),
			strconv.Itoa(ts.MergedClusters),
		)
	}
	table.Render()
}

// PrintSetPieceOutcomes writes the set-piece outcome table.
func PrintSetPieceOutcomes(w io.Writer, outcomes []model.SetPieceOutcome) {
	table := newTable(w)
	table.Header("SET PIECE", "RESULT", "TIME TO OUTCOME", "SCORING", "OUTCOME EVENT")
	for _, o := range outcomes {
		tto := "—"
		if o.ResultType != model.SetPieceUnknown {
			tto = fmt.Sprintf("%.1fs", o.TimeToOutcome)
		}
		chance := " "
		if o.ScoringChance {
			chance = "yes"
		}
		outEvent := o.OutcomeEventID
		if outEvent == "" {
			outEvent = "—"
		}
		table.Append(o.SetPieceEventID, string(o.ResultType), tto, chance, outEvent)
	}
	table.Render()
}

// PrintMergedStats writes the combined-halves stat table.
func PrintMergedStats(w io.Writer, stats []model.Stat) {
	table := newTable(w)
	table.Header("CALCULATOR", "PLAYER", "TEAM", "VALUE", "1ST", "2ND")
	for _, s := range stats {
		player := s.PlayerID
		if player == "" {
			player = "match"
		}
		team := s.TeamID
		if team == "" {
			team = "—"
		}
		first, second := "—", "—"
		if s.Metadata != nil {
			first = fmt.Sprintf("%.1f", s.Metadata.FirstHalfValue)
			second = fmt.Sprintf("%.1f", s.Metadata.SecondHalfValue)
		}
		table.Append(
			s.CalculatorID,
			player,
			team,
			fmt.Sprintf("%.1f", s.Value),
			first,
			second,
		)
	}
	table.Render()
}
