// Package scoring matches timeline events to candidate clips and turns the
// matches into a ranked importance ordering.
package scoring

import (
	"math"
	"sort"

	"github.com/pitchlab/go-match-highlights/internal/config"
	"github.com/pitchlab/go-match-highlights/internal/model"
)

// eventTypeWeights is the base importance contribution of each event kind.
var eventTypeWeights = map[model.EventType]float64{
	model.EventGoal:       1.0,
	model.EventPenalty:    0.95,
	model.EventRedCard:    0.9,
	model.EventOwnGoal:    0.85,
	model.EventSave:       0.75,
	model.EventShot:       0.7,
	model.EventChance:     0.65,
	model.EventKeyPass:    0.6,
	model.EventFoul:       0.55,
	model.EventYellowCard: 0.55,
	model.EventSetPiece:   0.5,
	model.EventTackle:     0.5,
	model.EventTurnover:   0.45,
	model.EventPass:       0.3,
	model.EventCarry:      0.25,
}

const defaultTypeWeight = 0.1

// importanceBoost is the event's type weight adjusted by its detail payload,
// clamped to 1.
func importanceBoost(e model.TimelineEvent) float64 {
	w, ok := eventTypeWeights[e.Type]
	if !ok {
		w = defaultTypeWeight
	}
	d := e.Details
	if d.ShotResult == "goal" {
		w = 1.0
	}
	if d.IsOnTarget != nil && *d.IsOnTarget {
		w *= 1.2
	}
	if d.ShotType == "long_range" {
		w *= 1.1
	}
	if d.WonTackle != nil && *d.WonTackle {
		w *= 1.3
	}
	if d.TurnoverType == "interception" {
		w *= 1.2
	}
	if w > 1 {
		w = 1
	}
	return w
}

// MatchEvents finds the timeline events temporally related to clip and
// classifies each relation. Events inside the clip are exact matches; events
// within the tolerance of an edge are overlap matches; events within a second
// tolerance beyond that are proximity matches. Matches come back sorted by
// confidence, highest first. An invalid clip matches nothing.
func MatchEvents(clip model.Clip, events []model.TimelineEvent, cfg config.Matcher) []model.ClipEventMatch {
	if !clip.Valid() {
		return nil
	}
	center := (clip.StartTime + clip.EndTime) / 2
	half := (clip.EndTime - clip.StartTime) / 2
	tol := cfg.Tolerance

	var out []model.ClipEventMatch
	for _, e := range events {
		d := math.Abs(e.Timestamp - center)

		var mt model.ClipMatchType
		var conf float64
		switch {
		case d <= half:
			mt = model.MatchExact
			conf = math.Max(0.7, 1-(d/half)*0.3)
		case d <= half+tol:
			mt = model.MatchOverlap
			conf = math.Max(0.4, 0.7-((d-half)/tol)*0.3)
		case d <= half+2*tol:
			mt = model.MatchProximity
			conf = math.Max(0.2, 0.4-((d-half-tol)/tol)*0.2)
		default:
			continue
		}

		out = append(out, model.ClipEventMatch{
			ClipID:          clip.ID,
			EventID:         e.ID,
			MatchType:       mt,
			Confidence:      conf,
			TemporalOffset:  math.Max(0, d-half),
			ImportanceBoost: importanceBoost(e),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
