// Package teamcolor provides the hue arithmetic used to align detected jersey
// colors with the home/away sides. Hues are degrees on the color wheel, so
// distance has to wrap at 360.
package teamcolor

import (
	"math"

	"github.com/pitchlab/go-match-highlights/internal/model"
)

// HueDistance returns the angular distance between two hues in degrees,
// wrapped to [0, 180]. Red (0°) and magenta (300°) are 60° apart, not 300°.
func HueDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// NearestTeam returns 0 if hue is closer to teamA's reference hue, 1 if it is
// closer to teamB's. Ties go to teamA.
func NearestTeam(hue, teamA, teamB float64) int {
	if HueDistance(hue, teamB) < HueDistance(hue, teamA) {
		return 1
	}
	return 0
}

// TrackMeta is one tracked player's dominant jersey hue, as produced by the
// upstream tracker.
type TrackMeta struct {
	TrackID string  `json:"trackId"`
	Hue     float64 `json:"hue"`
}

// Mapping assigns one track to a side.
type Mapping struct {
	TrackID string     `json:"trackId"`
	Team    model.Team `json:"team"`
}

// AssignTeams maps every track to the side whose reference jersey hue it sits
// closest to.
func AssignTeams(metas []TrackMeta, homeHue, awayHue float64) []Mapping {
	out := make([]Mapping, len(metas))
	for i, m := range metas {
		team := model.TeamHome
		if NearestTeam(m.Hue, homeHue, awayHue) == 1 {
			team = model.TeamAway
		}
		out[i] = Mapping{TrackID: m.TrackID, Team: team}
	}
	return out
}
