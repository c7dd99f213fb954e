// Package merger combines two per-half analyses into one full-match view:
// second-half timestamps shift onto the match clock, and per-half stats fold
// into single values by summing counts and averaging everything else.
package merger

import (
	"regexp"
	"sort"

	"github.com/pitchlab/go-match-highlights/internal/model"
)

// Count-like stats sum across halves; everything else averages. A stat whose
// id names a rate-like quantity averages even when it also mentions a total.
var (
	countRe       = regexp.MustCompile(`(^|_)(count|total|number)(_|$)`)
	domainCountRe = regexp.MustCompile(`_(goals|shots|passes|tackles|clearances|blocks|fouls|corners|offsides)$`)
	excludeRe     = regexp.MustCompile(`(^|_)(accuracy|rate|percentage|ratio|average)(_|$)`)
)

// isCountStat reports whether a calculator id names an additive quantity.
func isCountStat(calculatorID string) bool {
	if excludeRe.MatchString(calculatorID) {
		return false
	}
	return countRe.MatchString(calculatorID) || domainCountRe.MatchString(calculatorID)
}

// ShiftTimeline returns events with every timestamp moved by offset seconds.
func ShiftTimeline(events []model.TimelineEvent, offset float64) []model.TimelineEvent {
	out := make([]model.TimelineEvent, len(events))
	for i, e := range events {
		e.Timestamp += offset
		out[i] = e
	}
	return out
}

// ShiftDeduplicated returns events with every timestamp moved by offset
// seconds.
func ShiftDeduplicated(events []model.DeduplicatedEvent, offset float64) []model.DeduplicatedEvent {
	out := make([]model.DeduplicatedEvent, len(events))
	for i, e := range events {
		e.AbsoluteTimestamp += offset
		out[i] = e
	}
	return out
}

// ShiftClips returns clips with both edges moved by offset seconds.
func ShiftClips(clips []model.Clip, offset float64) []model.Clip {
	out := make([]model.Clip, len(clips))
	for i, c := range clips {
		c.StartTime += offset
		c.EndTime += offset
		out[i] = c
	}
	return out
}

// MergeTimelines concatenates the first half with the second half shifted by
// halfDuration, sorted by timestamp.
func MergeTimelines(first, second []model.TimelineEvent, halfDuration float64) []model.TimelineEvent {
	out := make([]model.TimelineEvent, 0, len(first)+len(second))
	out = append(out, first...)
	out = append(out, ShiftTimeline(second, halfDuration)...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// statKey identifies one logical stat across halves.
type statKey struct {
	calculator string
	player     string
	team       string
}

func keyOf(s model.Stat) statKey {
	k := statKey{calculator: s.CalculatorID, player: s.PlayerID, team: s.TeamID}
	if k.player == "" {
		k.player = "match"
	}
	if k.team == "" {
		k.team = "none"
	}
	return k
}

// MergeStats folds per-half stats into full-match values. Stats pair up by
// calculator, player, and team; a pair sums when the calculator id is
// count-like and averages otherwise, keeping both halves in the metadata. A
// stat present in only one half passes through unchanged apart from the
// merged marker. Only the first stat per key and half participates.
func MergeStats(first, second []model.Stat) []model.Stat {
	type pair struct {
		a, b *model.Stat
	}
	byKey := make(map[statKey]*pair)
	var order []statKey

	take := func(stats []model.Stat, secondHalf bool) {
		for i := range stats {
			k := keyOf(stats[i])
			p, ok := byKey[k]
			if !ok {
				p = &pair{}
				byKey[k] = p
				order = append(order, k)
			}
			if !secondHalf {
				if p.a == nil {
					p.a = &stats[i]
				}
			} else if p.b == nil {
				p.b = &stats[i]
			}
		}
	}
	take(first, false)
	take(second, true)

	out := make([]model.Stat, 0, len(order))
	for _, k := range order {
		p := byKey[k]
		switch {
		case p.a != nil && p.b != nil:
			merged := *p.a
			if isCountStat(merged.CalculatorID) {
				merged.Value = p.a.Value + p.b.Value
			} else {
				merged.Value = (p.a.Value + p.b.Value) / 2
			}
			merged.MergedFromHalves = true
			merged.Metadata = &model.StatHalves{
				FirstHalfValue:  p.a.Value,
				SecondHalfValue: p.b.Value,
			}
			out = append(out, merged)
		case p.a != nil:
			solo := *p.a
			solo.MergedFromHalves = true
			out = append(out, solo)
		default:
			solo := *p.b
			solo.MergedFromHalves = true
			out = append(out, solo)
		}
	}
	return out
}

// HalfAnalysis is one half's worth of pipeline output.
type HalfAnalysis struct {
	Events   []model.DeduplicatedEvent
	Timeline []model.TimelineEvent
	Clips    []model.Clip
	Stats    []model.Stat
}

// MatchAnalysis is the combined full-match view.
type MatchAnalysis struct {
	Events   []model.DeduplicatedEvent
	Timeline []model.TimelineEvent
	Clips    []model.Clip
	Stats    []model.Stat
}

// Merge combines a first- and second-half analysis. Everything in the second
// half moves forward by halfDurationSec; stats fold per MergeStats.
func Merge(first, second HalfAnalysis, halfDurationSec float64) MatchAnalysis {
	events := make([]model.DeduplicatedEvent, 0, len(first.Events)+len(second.Events))
	events = append(events, first.Events...)
	events = append(events, ShiftDeduplicated(second.Events, halfDurationSec)...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].AbsoluteTimestamp < events[j].AbsoluteTimestamp
	})

	clips := make([]model.Clip, 0, len(first.Clips)+len(second.Clips))
	clips = append(clips, first.Clips...)
	clips = append(clips, ShiftClips(second.Clips, halfDurationSec)...)

	return MatchAnalysis{
		Events:   events,
		Timeline: MergeTimelines(first.Timeline, second.Timeline, halfDurationSec),
		Clips:    clips,
		Stats:    MergeStats(first.Stats, second.Stats),
	}
}
