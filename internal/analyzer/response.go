package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pitchlab/go-match-highlights/internal/model"
)

// Response is the JSON document the model returns for one window.
type Response struct {
	Metadata *ResponseMetadata `json:"metadata,omitempty"`
	Events   []ResponseEvent   `json:"events"`
}

// ResponseMetadata carries optional per-window quality diagnostics.
type ResponseMetadata struct {
	VideoQuality        string   `json:"videoQuality,omitempty"`
	QualityIssues       []string `json:"qualityIssues,omitempty"`
	AnalyzedDurationSec float64  `json:"analyzedDurationSec,omitempty"`
}

// ResponseEvent is one event proposal with a window-relative timestamp.
type ResponseEvent struct {
	Timestamp      float64            `json:"timestamp"`
	Type           model.EventType    `json:"type"`
	Team           model.Team         `json:"team"`
	Player         string             `json:"player,omitempty"`
	Zone           string             `json:"zone,omitempty"`
	Details        model.EventDetails `json:"details,omitempty"`
	Confidence     float64            `json:"confidence"`
	VisualEvidence string             `json:"visualEvidence,omitempty"`
}

var validZones = map[string]bool{
	"defensive_third": true,
	"middle_third":    true,
	"attacking_third": true,
}

var detailEnums = map[string]map[string]bool{
	"passType":     set("short", "medium", "long", "through", "cross"),
	"outcome":      set("complete", "incomplete", "intercepted"),
	"endReason":    set("pass", "shot", "dispossessed", "stopped"),
	"turnoverType": set("tackle", "interception", "bad_touch", "out_of_bounds", "other"),
	"shotResult":   set("goal", "saved", "blocked", "missed", "post"),
	"shotType":     set("power", "placed", "header", "volley", "long_range", "chip"),
	"setPieceType": set("corner", "free_kick", "penalty", "throw_in"),
}

func set(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// ParseResponse decodes and validates one window response, converting every
// accepted proposal to a RawEvent on the absolute timeline. Any invalid event
// fails the whole response; the caller re-invokes the model.
func ParseResponse(text string, w model.Window) ([]model.RawEvent, error) {
	body := stripFences(text)
	if body == "" {
		return nil, ErrEmptyResponse
	}

	var resp Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("%w: bad JSON: %v", ErrInvalidResponse, err)
	}

	out := make([]model.RawEvent, 0, len(resp.Events))
	for i, ev := range resp.Events {
		if err := validateEvent(ev); err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", ErrInvalidResponse, i, err)
		}
		out = append(out, model.RawEvent{
			WindowID:          w.WindowID,
			RelativeTimestamp: ev.Timestamp,
			AbsoluteTimestamp: w.AbsoluteStart + ev.Timestamp,
			Type:              ev.Type,
			Team:              ev.Team,
			Player:            ev.Player,
			Zone:              ev.Zone,
			Details:           ev.Details,
			Confidence:        ev.Confidence,
			VisualEvidence:    ev.VisualEvidence,
		})
	}
	return out, nil
}

func validateEvent(ev ResponseEvent) error {
	if ev.Timestamp < 0 {
		return fmt.Errorf("negative timestamp %v", ev.Timestamp)
	}
	if !model.IsRawEventType(ev.Type) {
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.Team != model.TeamHome && ev.Team != model.TeamAway {
		return fmt.Errorf("invalid team %q", ev.Team)
	}
	if ev.Zone != "" && !validZones[ev.Zone] {
		return fmt.Errorf("invalid zone %q", ev.Zone)
	}
	if ev.Confidence < 0.3 || ev.Confidence > 1.0 {
		return fmt.Errorf("confidence %v outside [0.3, 1]", ev.Confidence)
	}
	return validateDetails(ev.Details)
}

func validateDetails(d model.EventDetails) error {
	checks := []struct {
		field, value string
	}{
		{"passType", d.PassType},
		{"outcome", d.Outcome},
		{"endReason", d.EndReason},
		{"turnoverType", d.TurnoverType},
		{"shotResult", d.ShotResult},
		{"shotType", d.ShotType},
		{"setPieceType", d.SetPieceType},
	}
	for _, c := range checks {
		if c.value != "" && !detailEnums[c.field][c.value] {
			return fmt.Errorf("invalid %s %q", c.field, c.value)
		}
	}
	if d.Distance != nil && *d.Distance < 0 {
		return fmt.Errorf("negative distance %v", *d.Distance)
	}
	return nil
}

// stripFences removes a surrounding markdown code fence, which models emit
// despite instructions not to.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
