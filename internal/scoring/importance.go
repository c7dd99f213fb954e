package scoring

import (
	"math"
	"sort"

	"github.com/pitchlab/go-match-highlights/internal/config"
	"github.com/pitchlab/go-match-highlights/internal/model"
)

// noMatchImportance is the floor score for a clip nothing matched.
const noMatchImportance = 0.1

// boostRarities maps inferred event kinds to how unusual they are in a match.
var boostRarities = map[model.EventType]float64{
	model.EventOwnGoal:    0.9,
	model.EventRedCard:    0.85,
	model.EventPenalty:    0.8,
	model.EventGoal:       0.7,
	model.EventSave:       0.6,
	model.EventYellowCard: 0.4,
}

// inferTypeFromBoost walks the type-weight ladder back up from a match's
// importance boost. Matches only carry the boost, not the event kind, so
// rarity is inferred from the highest weight the boost clears.
func inferTypeFromBoost(boost float64) model.EventType {
	switch {
	case boost >= 0.95:
		return model.EventGoal
	case boost >= 0.9:
		return model.EventPenalty
	case boost >= 0.85:
		return model.EventRedCard
	case boost >= 0.8:
		return model.EventOwnGoal
	case boost >= 0.7:
		return model.EventShot
	case boost >= 0.6:
		return model.EventKeyPass
	case boost >= 0.5:
		return model.EventTackle
	default:
		return ""
	}
}

// ScoreClip folds a clip's matches into an importance breakdown. matchCtx may
// be nil; the context boost is then zero.
func ScoreClip(matches []model.ClipEventMatch, matchCtx *model.MatchContext) model.ClipImportanceFactors {
	if len(matches) == 0 {
		return model.ClipImportanceFactors{
			BaseImportance:  noMatchImportance,
			FinalImportance: noMatchImportance,
		}
	}

	sorted := make([]model.ClipEventMatch, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	base := sorted[0].ImportanceBoost * sorted[0].Confidence

	// Secondary matches contribute with geometric falloff, at most two.
	typeBoost := 0.0
	for i := 1; i < len(sorted) && i < 3; i++ {
		typeBoost += sorted[i].ImportanceBoost * sorted[i].Confidence * math.Pow(0.5, float64(i))
	}
	typeBoost *= 0.3

	contextBoost := 0.0
	if matchCtx != nil {
		if p := matchCtx.Progress(); p > 0.8 {
			contextBoost += 0.15 * (p - 0.8) / 0.2
		}
		if abs(matchCtx.ScoreDifferential) <= 1 {
			contextBoost += 0.1
		}
		// A likely goal while trailing is the moment of the match, however
		// weakly the clip overlaps it.
		if matchCtx.ScoreDifferential < 0 && hasGoalLevelBoost(sorted) {
			contextBoost += 0.15
		}
		if contextBoost > 0.3 {
			contextBoost = 0.3
		}
	}

	rarityBoost := 0.0
	for _, m := range sorted {
		r := boostRarities[inferTypeFromBoost(m.ImportanceBoost)] * m.Confidence
		if r > rarityBoost {
			rarityBoost = r
		}
	}
	rarityBoost *= 0.2

	final := base + typeBoost + contextBoost + rarityBoost
	if final > 1 {
		final = 1
	}
	return model.ClipImportanceFactors{
		BaseImportance:  base,
		EventTypeBoost:  typeBoost,
		ContextBoost:    contextBoost,
		RarityBoost:     rarityBoost,
		FinalImportance: final,
	}
}

func hasGoalLevelBoost(matches []model.ClipEventMatch) bool {
	for _, m := range matches {
		if m.ImportanceBoost >= eventTypeWeights[model.EventGoal] {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// RankedClip pairs a clip with its matches and importance breakdown.
type RankedClip struct {
	Clip    model.Clip                  `json:"clip"`
	Matches []model.ClipEventMatch      `json:"matches"`
	Factors model.ClipImportanceFactors `json:"factors"`
}

// RankClips matches every clip against the timeline, scores it, and returns
// the clips ordered by final importance, highest first. Ties keep the input
// order.
func RankClips(clips []model.Clip, events []model.TimelineEvent, matchCtx *model.MatchContext, cfg config.Matcher) []RankedClip {
	out := make([]RankedClip, 0, len(clips))
	for _, c := range clips {
		matches := MatchEvents(c, events, cfg)
		out = append(out, RankedClip{
			Clip:    c,
			Matches: matches,
			Factors: ScoreClip(matches, matchCtx),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Factors.FinalImportance > out[j].Factors.FinalImportance
	})
	return out
}

// TopN returns the first n ranked clips, or all of them when n is zero or
// exceeds the slice.
func TopN(ranked []RankedClip, n int) []RankedClip {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// FilterByImportance keeps the clips whose final importance meets min.
func FilterByImportance(ranked []RankedClip, min float64) []RankedClip {
	out := make([]RankedClip, 0, len(ranked))
	for _, r := range ranked {
		if r.Factors.FinalImportance >= min {
			out = append(out, r)
		}
	}
	return out
}
