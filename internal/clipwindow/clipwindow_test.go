package clipwindow

import (
	"testing"

	"github.com/pitchlab/go-match-highlights/internal/model"
)

func ev(id string, t float64, typ model.EventType) model.TimelineEvent {
	return model.TimelineEvent{ID: id, Timestamp: t, Type: typ}
}

func TestDefaultsPerType(t *testing.T) {
	cases := []struct {
		typ           model.EventType
		before, after float64
	}{
		{model.EventGoal, 10, 5},
		{model.EventPenalty, 5, 5},
		{model.EventRedCard, 7, 4},
		{model.EventShot, 7, 3},
		{model.EventSetPiece, 3, 5},
		{model.EventPass, 2, 1},
		{model.EventType("unheard_of"), 5, 3},
	}
	for _, tc := range cases {
		w := Calculate(ev("e1", 100, tc.typ), nil, nil)
		if w.Before != tc.before || w.After != tc.after {
			t.Errorf("%s: want (%.1f, %.1f), got (%.1f, %.1f)",
				tc.typ, tc.before, tc.after, w.Before, w.After)
		}
	}
}

func TestCounterAttackGoal(t *testing.T) {
	goal := ev("g", 95, model.EventGoal)
	peers := []model.TimelineEvent{
		ev("t", 90, model.EventTurnover),
		goal,
	}
	w := Calculate(goal, peers, nil)
	if w.Before != 15 {
		t.Errorf("counter-attack goal: want before 15, got %.1f", w.Before)
	}
	if w.After != 5 {
		t.Errorf("counter-attack goal: want after 5, got %.1f", w.After)
	}
	if w.Reason != "counter-attack goal" {
		t.Errorf("reason: got %q", w.Reason)
	}
}

func TestCounterAttackRequiresRecentTurnover(t *testing.T) {
	goal := ev("g", 95, model.EventGoal)

	// Turnover too far back.
	w := Calculate(goal, []model.TimelineEvent{ev("t", 84, model.EventTurnover)}, nil)
	if w.Before != 10 {
		t.Errorf("turnover 11 s back should not trigger: got before %.1f", w.Before)
	}

	// Turnover after the goal.
	w = Calculate(goal, []model.TimelineEvent{ev("t", 96, model.EventTurnover)}, nil)
	if w.Before != 10 {
		t.Errorf("turnover after the goal should not trigger: got before %.1f", w.Before)
	}
}

func TestShotDetailAdjustments(t *testing.T) {
	onTarget := true
	shot := ev("s", 50, model.EventShot)
	shot.Details.IsOnTarget = &onTarget
	shot.Details.ShotType = "long_range"

	w := Calculate(shot, nil, nil)
	if w.Before != 4 {
		t.Errorf("long-range shot: want before 4, got %.1f", w.Before)
	}
	if w.After != 4 {
		t.Errorf("on-target shot: want after 4, got %.1f", w.After)
	}
}

func TestSetPieceKindAdjustments(t *testing.T) {
	corner := ev("c", 50, model.EventSetPiece)
	corner.Details.SetPieceType = "corner"
	if w := Calculate(corner, nil, nil); w.Before != 2 || w.After != 7 {
		t.Errorf("corner: want (2, 7), got (%.1f, %.1f)", w.Before, w.After)
	}

	fk := ev("f", 50, model.EventSetPiece)
	fk.Details.SetPieceType = "free_kick"
	if w := Calculate(fk, nil, nil); w.Before != 3 || w.After != 6 {
		t.Errorf("free kick: want (3, 6), got (%.1f, %.1f)", w.Before, w.After)
	}
}

func TestInterceptionExtendsAfter(t *testing.T) {
	to := ev("t", 50, model.EventTurnover)
	to.Details.TurnoverType = "interception"
	if w := Calculate(to, nil, nil); w.After != 5 {
		t.Errorf("interception: want after 5, got %.1f", w.After)
	}
}

func TestLateGameMultiplier(t *testing.T) {
	ctx := &model.MatchContext{MatchMinute: 88, TotalMatchMinutes: 95, ScoreDifferential: 3}
	w := Calculate(ev("s", 5300, model.EventShot), nil, ctx)
	// 7*1.2 = 8.4, 3*1.3 = 3.9
	if w.Before != 8.4 || w.After != 3.9 {
		t.Errorf("late-game shot: want (8.4, 3.9), got (%.1f, %.1f)", w.Before, w.After)
	}

	// Not a late-game kind: unchanged.
	w = Calculate(ev("p", 5300, model.EventPass), nil, ctx)
	if w.Before != 2 || w.After != 1 {
		t.Errorf("late-game pass: want (2, 1), got (%.1f, %.1f)", w.Before, w.After)
	}
}

func TestCloseScoreGoalMultiplier(t *testing.T) {
	ctx := &model.MatchContext{MatchMinute: 30, TotalMatchMinutes: 95, ScoreDifferential: -1}
	w := Calculate(ev("g", 1800, model.EventGoal), nil, ctx)
	// 10*1.1 = 11, 5*1.2 = 6
	if w.Before != 11 || w.After != 6 {
		t.Errorf("close-score goal: want (11, 6), got (%.1f, %.1f)", w.Before, w.After)
	}
}

func TestLateGameAndCloseScoreStack(t *testing.T) {
	ctx := &model.MatchContext{MatchMinute: 90, TotalMatchMinutes: 95, ScoreDifferential: 0}
	w := Calculate(ev("g", 5400, model.EventGoal), nil, ctx)
	// 10*1.2*1.1 = 13.2, 5*1.3*1.2 = 7.8
	if w.Before != 13.2 || w.After != 7.8 {
		t.Errorf("stacked goal: want (13.2, 7.8), got (%.1f, %.1f)", w.Before, w.After)
	}
}

func TestDensityMultiplier(t *testing.T) {
	shot := ev("s", 100, model.EventShot)
	peers := []model.TimelineEvent{
		shot,
		ev("a", 94, model.EventPass),
		ev("b", 95, model.EventPass),
		ev("c", 96, model.EventCarry),
		ev("d", 98, model.EventPass),
	}
	w := Calculate(shot, peers, nil)
	// 4 peers in [93, 100] > 3: before 7*1.3 = 9.1. After side stays quiet.
	if w.Before != 9.1 {
		t.Errorf("dense lead-up: want before 9.1, got %.1f", w.Before)
	}
	if w.After != 3 {
		t.Errorf("quiet follow-up: want after 3, got %.1f", w.After)
	}
}

func TestContextEventsCollected(t *testing.T) {
	shot := ev("s", 100, model.EventShot)
	peers := []model.TimelineEvent{
		shot,
		ev("kp", 96, model.EventKeyPass),  // wanted before
		ev("tk", 97, model.EventTackle),   // not a shot lead-up kind
		ev("sv", 102, model.EventSave),    // wanted after
		ev("far", 50, model.EventKeyPass), // outside the window
	}
	w := Calculate(shot, peers, nil)
	if len(w.ContextBefore) != 1 || w.ContextBefore[0].ID != "kp" {
		t.Errorf("context before: got %+v", w.ContextBefore)
	}
	if len(w.ContextAfter) != 1 || w.ContextAfter[0].ID != "sv" {
		t.Errorf("context after: got %+v", w.ContextAfter)
	}
}

func TestEventItselfIsNotContext(t *testing.T) {
	g := ev("g", 100, model.EventGoal)
	w := Calculate(g, []model.TimelineEvent{g}, nil)
	if len(w.ContextBefore) != 0 || len(w.ContextAfter) != 0 {
		t.Errorf("event must not be its own context: %+v / %+v", w.ContextBefore, w.ContextAfter)
	}
}
