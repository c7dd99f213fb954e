// Package clipwindow derives context-aware clip windows around timeline
// events: how many seconds before and after an event a highlight clip should
// cover.
package clipwindow

import (
	"math"

	"github.com/pitchlab/go-match-highlights/internal/model"
)

// baseWindow is the default (before, after) pair and reason for one kind.
type baseWindow struct {
	before, after float64
	reason        string
}

var baseWindows = map[model.EventType]baseWindow{
	model.EventGoal:       {10, 5, "goal buildup and celebration"},
	model.EventPenalty:    {5, 5, "penalty run-up and result"},
	model.EventRedCard:    {7, 4, "incident leading to the red card"},
	model.EventOwnGoal:    {8, 5, "sequence leading to the own goal"},
	model.EventShot:       {7, 3, "shot buildup"},
	model.EventSave:       {5, 2, "shot and save"},
	model.EventChance:     {6, 3, "chance development"},
	model.EventKeyPass:    {5, 4, "pass and resulting attack"},
	model.EventFoul:       {3, 2, "challenge and reaction"},
	model.EventYellowCard: {4, 2, "booking incident"},
	model.EventSetPiece:   {3, 5, "set piece delivery and outcome"},
	model.EventTackle:     {2, 2, "tackle"},
	model.EventTurnover:   {2, 3, "possession change"},
	model.EventPass:       {2, 1, "pass"},
	model.EventCarry:      {2, 2, "ball carry"},
}

var fallbackWindow = baseWindow{5, 3, "default window"}

// counterAttackWindowSec bounds how far back a turnover can be and still mark
// a goal as a counter-attack finish.
const counterAttackWindowSec = 10

// contextBeforeTypes lists which peer kinds are interesting lead-up context
// for each event kind; contextAfterTypes the follow-up context.
var contextBeforeTypes = map[model.EventType][]model.EventType{
	model.EventGoal:    {model.EventKeyPass, model.EventChance, model.EventPass},
	model.EventPenalty: {model.EventFoul},
	model.EventShot:    {model.EventKeyPass, model.EventPass, model.EventCarry},
	model.EventSave:    {model.EventShot},
	model.EventChance:  {model.EventKeyPass, model.EventPass},
	model.EventOwnGoal: {model.EventPass, model.EventSetPiece},
}

var contextAfterTypes = map[model.EventType][]model.EventType{
	model.EventSetPiece: {model.EventShot, model.EventGoal, model.EventTurnover},
	model.EventShot:     {model.EventSave, model.EventGoal},
	model.EventFoul:     {model.EventYellowCard, model.EventRedCard, model.EventSetPiece},
	model.EventKeyPass:  {model.EventShot, model.EventGoal, model.EventChance},
}

// Calculate returns the dynamic clip window for event among its timeline
// peers. matchCtx may be nil when no match-level state is known; the
// late-game and close-score boosts then stay off.
func Calculate(event model.TimelineEvent, peers []model.TimelineEvent, matchCtx *model.MatchContext) model.DynamicWindow {
	bw, ok := baseWindows[event.Type]
	if !ok {
		bw = fallbackWindow
	}
	before, after, reason := bw.before, bw.after, bw.reason

	// Counter-attack goals deserve the whole break.
	if event.Type == model.EventGoal && hasRecentTurnover(event, peers) {
		before = 15
		reason = "counter-attack goal"
	}

	// Detail-driven tweaks.
	d := event.Details
	switch event.Type {
	case model.EventShot:
		if d.IsOnTarget != nil && *d.IsOnTarget {
			after = 4
		}
		if d.ShotType == "long_range" {
			before = 4
		}
	case model.EventSetPiece:
		switch d.SetPieceType {
		case "corner":
			before, after = 2, 7
			reason = "corner delivery and scramble"
		case "free_kick":
			before, after = 3, 6
			reason = "free kick setup and delivery"
		}
	case model.EventTurnover:
		if d.TurnoverType == "interception" {
			after = 5
		}
	}

	// Match-context multipliers.
	if matchCtx != nil {
		if matchCtx.Progress() > 0.85 && isLateGameType(event.Type) {
			before *= 1.2
			after *= 1.3
		}
		if event.Type == model.EventGoal && abs(matchCtx.ScoreDifferential) <= 1 {
			before *= 1.1
			after *= 1.2
		}
	}

	// Dense stretches stretch the window.
	if countPeersIn(peers, event, event.Timestamp-before, event.Timestamp) > 3 {
		before *= 1.3
	}
	if countPeersIn(peers, event, event.Timestamp, event.Timestamp+after) > 3 {
		after *= 1.3
	}

	before = round1(before)
	after = round1(after)

	return model.DynamicWindow{
		Before:        before,
		After:         after,
		Reason:        reason,
		ContextBefore: contextEvents(peers, event, event.Timestamp-before, event.Timestamp, contextBeforeTypes[event.Type]),
		ContextAfter:  contextEvents(peers, event, event.Timestamp, event.Timestamp+after, contextAfterTypes[event.Type]),
	}
}

func hasRecentTurnover(event model.TimelineEvent, peers []model.TimelineEvent) bool {
	for _, p := range peers {
		if p.Type != model.EventTurnover {
			continue
		}
		dt := event.Timestamp - p.Timestamp
		if dt > 0 && dt <= counterAttackWindowSec {
			return true
		}
	}
	return false
}

func isLateGameType(t model.EventType) bool {
	return t == model.EventGoal || t == model.EventShot || t == model.EventChance
}

func countPeersIn(peers []model.TimelineEvent, event model.TimelineEvent, lo, hi float64) int {
	n := 0
	for _, p := range peers {
		if p.ID == event.ID {
			continue
		}
		if p.Timestamp >= lo && p.Timestamp <= hi {
			n++
		}
	}
	return n
}

func contextEvents(peers []model.TimelineEvent, event model.TimelineEvent, lo, hi float64, wanted []model.EventType) []model.TimelineEvent {
	if len(wanted) == 0 {
		return nil
	}
	want := make(map[model.EventType]bool, len(wanted))
	for _, t := range wanted {
		want[t] = true
	}
	var out []model.TimelineEvent
	for _, p := range peers {
		if p.ID == event.ID || !want[p.Type] {
			continue
		}
		if p.Timestamp >= lo && p.Timestamp <= hi {
			out = append(out, p)
		}
	}
	return out
}

func round1(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Round(v*10) / 10
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
