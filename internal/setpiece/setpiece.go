// Package setpiece resolves what each set piece led to: a goal, a shot, a
// clearance, a turnover, or just continued play.
package setpiece

import (
	"github.com/pitchlab/go-match-highlights/internal/model"
)

// DefaultWindowSec is how long after the delivery an outcome still counts.
const DefaultWindowSec = 10

// clearedWindowSec is the tighter window for calling a delivery cleared: an
// opponent touch soon after the ball comes in.
const clearedWindowSec = 5

// Analyze finds every set piece on the timeline and resolves its outcome.
func Analyze(timeline []model.TimelineEvent, windowSec float64) []model.SetPieceOutcome {
	var setPieces []model.TimelineEvent
	for _, e := range timeline {
		if e.Type == model.EventSetPiece {
			setPieces = append(setPieces, e)
		}
	}
	return AnalyzeOutcomes(setPieces, timeline, windowSec)
}

// AnalyzeOutcomes resolves the outcome of each given set piece against the
// full timeline. Outcomes are ranked, not chronological: a goal anywhere in
// the window wins over an earlier turnover. windowSec <= 0 selects the
// default window.
func AnalyzeOutcomes(setPieces, timeline []model.TimelineEvent, windowSec float64) []model.SetPieceOutcome {
	if windowSec <= 0 {
		windowSec = DefaultWindowSec
	}
	out := make([]model.SetPieceOutcome, 0, len(setPieces))
	for _, sp := range setPieces {
		out = append(out, resolve(sp, timeline, windowSec))
	}
	return out
}

func resolve(sp model.TimelineEvent, timeline []model.TimelineEvent, windowSec float64) model.SetPieceOutcome {
	var window []model.TimelineEvent
	for _, e := range timeline {
		if e.ID == sp.ID {
			continue
		}
		dt := e.Timestamp - sp.Timestamp
		if dt > 0 && dt <= windowSec {
			window = append(window, e)
		}
	}

	outcome := model.SetPieceOutcome{
		SetPieceEventID: sp.ID,
		ResultType:      model.SetPieceUnknown,
	}

	// Goal anywhere in the window.
	if e, ok := earliest(window, func(e model.TimelineEvent) bool {
		return e.Type == model.EventGoal ||
			(e.Type == model.EventShot && e.Details.ShotResult == "goal")
	}); ok {
		return finish(outcome, sp, e, model.SetPieceGoal, true)
	}

	// Shot kept out by the keeper or the woodwork.
	if e, ok := earliest(window, func(e model.TimelineEvent) bool {
		return e.Type == model.EventShot &&
			(e.Details.ShotResult == "saved" || e.Details.ShotResult == "post")
	}); ok {
		return finish(outcome, sp, e, model.SetPieceShot, true)
	}

	// Any other shot.
	if e, ok := earliest(window, func(e model.TimelineEvent) bool {
		return e.Type == model.EventShot
	}); ok {
		return finish(outcome, sp, e, model.SetPieceShot, false)
	}

	// The attacking side gave it away.
	if e, ok := earliest(window, func(e model.TimelineEvent) bool {
		return e.Type == model.EventTurnover && e.Team == sp.Team
	}); ok {
		return finish(outcome, sp, e, model.SetPieceTurnover, false)
	}

	// Quick opponent touch: the delivery was cleared.
	if e, ok := earliest(window, func(e model.TimelineEvent) bool {
		return e.Team == sp.Team.Opponent() &&
			e.Timestamp-sp.Timestamp <= clearedWindowSec
	}); ok {
		return finish(outcome, sp, e, model.SetPieceCleared, false)
	}

	// The attacking side kept the ball without shooting.
	if e, ok := earliest(window, func(e model.TimelineEvent) bool {
		return e.Team == sp.Team && e.Type != model.EventShot
	}); ok {
		return finish(outcome, sp, e, model.SetPieceContinuedPlay, false)
	}

	return outcome
}

func earliest(window []model.TimelineEvent, match func(model.TimelineEvent) bool) (model.TimelineEvent, bool) {
	var best model.TimelineEvent
	found := false
	for _, e := range window {
		if !match(e) {
			continue
		}
		if !found || e.Timestamp < best.Timestamp {
			best = e
			found = true
		}
	}
	return best, found
}

func finish(o model.SetPieceOutcome, sp, e model.TimelineEvent, r model.SetPieceResult, scoring bool) model.SetPieceOutcome {
	o.ResultType = r
	o.TimeToOutcome = e.Timestamp - sp.Timestamp
	o.ScoringChance = scoring
	o.OutcomeEventID = e.ID
	return o
}
