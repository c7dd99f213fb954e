// Package model holds the value types shared across the highlight pipeline:
// segments, analysis windows, raw and deduplicated events, clips, and stats.
// Everything here is an immutable value created by the subsystem that produced
// it; nothing is shared across pipeline runs.
package model

import (
	"crypto/sha256"
	"fmt"
	"math"
)

// Team identifies which side an event belongs to.
type Team string

const (
	TeamHome    Team = "home"
	TeamAway    Team = "away"
	TeamUnknown Team = "unknown"
)

// Opponent returns the other side, or TeamUnknown when the side is unknown.
func (t Team) Opponent() Team {
	switch t {
	case TeamHome:
		return TeamAway
	case TeamAway:
		return TeamHome
	default:
		return TeamUnknown
	}
}

// SegmentType classifies a contiguous stretch of match video.
type SegmentType string

const (
	SegmentActivePlay SegmentType = "active_play"
	SegmentSetPiece   SegmentType = "set_piece"
	SegmentGoalMoment SegmentType = "goal_moment"
	SegmentStoppage   SegmentType = "stoppage"
	SegmentReplay     SegmentType = "replay"
)

// EventType is the closed taxonomy of timeline events. The analyzer emits the
// five raw kinds; the scorer additionally understands the derived kinds that
// upstream classifiers produce (goals, cards, saves, ...).
type EventType string

const (
	EventPass       EventType = "pass"
	EventCarry      EventType = "carry"
	EventTurnover   EventType = "turnover"
	EventShot       EventType = "shot"
	EventSetPiece   EventType = "setPiece"
	EventGoal       EventType = "goal"
	EventPenalty    EventType = "penalty"
	EventRedCard    EventType = "red_card"
	EventYellowCard EventType = "yellow_card"
	EventOwnGoal    EventType = "own_goal"
	EventKeyPass    EventType = "key_pass"
	EventTackle     EventType = "tackle"
	EventFoul       EventType = "foul"
	EventSave       EventType = "save"
	EventChance     EventType = "chance"
)

// rawEventTypes is the subset the external analyzer is allowed to emit.
var rawEventTypes = map[EventType]bool{
	EventPass:     true,
	EventCarry:    true,
	EventTurnover: true,
	EventShot:     true,
	EventSetPiece: true,
}

// IsRawEventType reports whether t is a kind the analyzer may emit.
func IsRawEventType(t EventType) bool { return rawEventTypes[t] }

// Segment is one classified interval of the match video, as produced by the
// upstream segmenter.
type Segment struct {
	SegmentID   string      `json:"segmentId"`
	StartSec    float64     `json:"startSec"`
	EndSec      float64     `json:"endSec"`
	Type        SegmentType `json:"type"`
	Description string      `json:"description,omitempty"`
	Team        Team        `json:"team,omitempty"`
	Importance  float64     `json:"importance,omitempty"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.EndSec - s.StartSec }

// Overlap records how much a window shares with its neighbours, in seconds.
type Overlap struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// Window is one analysis sub-interval of a segment, handed to the analyzer.
type Window struct {
	WindowID      string  `json:"windowId"`
	AbsoluteStart float64 `json:"absoluteStart"`
	AbsoluteEnd   float64 `json:"absoluteEnd"`
	Overlap       Overlap `json:"overlap"`
	TargetFps     int     `json:"targetFps"`
	Segment       Segment `json:"segmentContext"`
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 { return w.AbsoluteEnd - w.AbsoluteStart }

// EventDetails is the sparse per-event payload. Every field is optional;
// pointer fields distinguish "absent" from a zero value where that matters
// for detail merging.
type EventDetails struct {
	PassType     string   `json:"passType,omitempty"`     // short|medium|long|through|cross
	Outcome      string   `json:"outcome,omitempty"`      // complete|incomplete|intercepted
	TargetPlayer string   `json:"targetPlayer,omitempty"`
	Distance     *float64 `json:"distance,omitempty"`
	EndReason    string   `json:"endReason,omitempty"`    // pass|shot|dispossessed|stopped
	TurnoverType string   `json:"turnoverType,omitempty"` // tackle|interception|bad_touch|out_of_bounds|other
	ShotResult   string   `json:"shotResult,omitempty"`   // goal|saved|blocked|missed|post
	ShotType     string   `json:"shotType,omitempty"`     // power|placed|header|volley|long_range|chip
	SetPieceType string   `json:"setPieceType,omitempty"` // corner|free_kick|penalty|throw_in
	IsOnTarget   *bool    `json:"isOnTarget,omitempty"`
	WonTackle    *bool    `json:"wonTackle,omitempty"`
}

// IsEmpty reports whether no detail field is set.
func (d EventDetails) IsEmpty() bool {
	return d.PassType == "" && d.Outcome == "" && d.TargetPlayer == "" &&
		d.Distance == nil && d.EndReason == "" && d.TurnoverType == "" &&
		d.ShotResult == "" && d.ShotType == "" && d.SetPieceType == "" &&
		d.IsOnTarget == nil && d.WonTackle == nil
}

// RawEvent is a single detection from one window call. RelativeTimestamp is
// seconds from the window start; AbsoluteTimestamp is lifted to match time.
type RawEvent struct {
	WindowID          string       `json:"windowId"`
	RelativeTimestamp float64      `json:"relativeTimestamp"`
	AbsoluteTimestamp float64      `json:"absoluteTimestamp"`
	Type              EventType    `json:"type"`
	Team              Team         `json:"team"`
	Player            string       `json:"player,omitempty"`
	Zone              string       `json:"zone,omitempty"` // defensive_third|middle_third|attacking_third
	Details           EventDetails `json:"details"`
	Confidence        float64      `json:"confidence"`
	VisualEvidence    string       `json:"visualEvidence,omitempty"`
}

// Fingerprint is a stable identity for deduplication keys: same kind, same
// side, same tenth of a second collapse to the same digest.
func (e RawEvent) Fingerprint() string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%.1f", e.Type, e.Team, e.AbsoluteTimestamp))
	return fmt.Sprintf("%x", h[:8])
}

// DeduplicatedEvent is the representative of a cluster of raw events picked
// up by overlapping windows.
type DeduplicatedEvent struct {
	AbsoluteTimestamp  float64      `json:"absoluteTimestamp"`
	Type               EventType    `json:"type"`
	Team               Team         `json:"team"`
	Player             string       `json:"player,omitempty"`
	Zone               string       `json:"zone,omitempty"`
	Details            EventDetails `json:"details"`
	Confidence         float64      `json:"confidence"`
	AdjustedConfidence float64      `json:"adjustedConfidence"`
	VisualEvidence     string       `json:"visualEvidence,omitempty"`
	MergedFromWindows  []string     `json:"mergedFromWindows"`
}

// Clip is a candidate highlight interval.
type Clip struct {
	ID        string  `json:"id"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// Valid reports whether the clip has a positive, finite duration.
func (c Clip) Valid() bool {
	d := c.EndTime - c.StartTime
	return d > 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

// TimelineEvent is the scorer's view of an event: raw detections and derived
// classifications on one timeline.
type TimelineEvent struct {
	ID        string       `json:"id"`
	Timestamp float64      `json:"timestamp"`
	Type      EventType    `json:"type"`
	Team      Team         `json:"team,omitempty"`
	Details   EventDetails `json:"details,omitempty"`
}

// TimelineFromEvents projects deduplicated events onto the scorer's timeline
// view, assigning positional ids.
func TimelineFromEvents(events []DeduplicatedEvent) []TimelineEvent {
	out := make([]TimelineEvent, len(events))
	for i, e := range events {
		out[i] = TimelineEvent{
			ID:        fmt.Sprintf("evt-%04d", i),
			Timestamp: e.AbsoluteTimestamp,
			Type:      e.Type,
			Team:      e.Team,
			Details:   e.Details,
		}
	}
	return out
}

// ClipMatchType classifies how an event sits relative to a clip.
type ClipMatchType string

const (
	MatchExact     ClipMatchType = "exact"
	MatchOverlap   ClipMatchType = "overlap"
	MatchProximity ClipMatchType = "proximity"
)

// ClipEventMatch pairs a clip with a temporally related event.
type ClipEventMatch struct {
	ClipID          string        `json:"clipId"`
	EventID         string        `json:"eventId"`
	MatchType       ClipMatchType `json:"matchType"`
	Confidence      float64       `json:"confidence"`
	TemporalOffset  float64       `json:"temporalOffset"`
	ImportanceBoost float64       `json:"importanceBoost"`
}

// ClipImportanceFactors is the breakdown of a clip's importance score.
type ClipImportanceFactors struct {
	BaseImportance  float64 `json:"baseImportance"`
	EventTypeBoost  float64 `json:"eventTypeBoost"`
	ContextBoost    float64 `json:"contextBoost"`
	RarityBoost     float64 `json:"rarityBoost"`
	FinalImportance float64 `json:"finalImportance"`
}

// DynamicWindow is a context-aware clip window around an event, in seconds.
type DynamicWindow struct {
	Before        float64         `json:"before"`
	After         float64         `json:"after"`
	Reason        string          `json:"reason"`
	ContextBefore []TimelineEvent `json:"contextBefore,omitempty"`
	ContextAfter  []TimelineEvent `json:"contextAfter,omitempty"`
}

// SetPieceResult classifies the first meaningful event after a set piece.
type SetPieceResult string

const (
	SetPieceGoal          SetPieceResult = "goal"
	SetPieceShot          SetPieceResult = "shot"
	SetPieceCleared       SetPieceResult = "cleared"
	SetPieceTurnover      SetPieceResult = "turnover"
	SetPieceContinuedPlay SetPieceResult = "continued_play"
	SetPieceUnknown       SetPieceResult = "unknown"
)

// SetPieceOutcome records what a set piece led to within the analysis window.
type SetPieceOutcome struct {
	SetPieceEventID string         `json:"setPieceEventId"`
	ResultType      SetPieceResult `json:"resultType"`
	TimeToOutcome   float64        `json:"timeToOutcome"`
	ScoringChance   bool           `json:"scoringChance"`
	OutcomeEventID  string         `json:"outcomeEventId,omitempty"`
}

// StatHalves keeps the pre-merge values of a stat combined across halves.
type StatHalves struct {
	FirstHalfValue  float64 `json:"firstHalfValue"`
	SecondHalfValue float64 `json:"secondHalfValue"`
}

// Stat is one calculator output for a player or team. PlayerID and TeamID are
// empty for match-level stats.
type Stat struct {
	StatID           string      `json:"statId"`
	CalculatorID     string      `json:"calculatorId"`
	PlayerID         string      `json:"playerId,omitempty"`
	TeamID           string      `json:"teamId,omitempty"`
	Value            float64     `json:"value"`
	MergedFromHalves bool        `json:"mergedFromHalves,omitempty"`
	Metadata         *StatHalves `json:"metadata,omitempty"`
}

// MatchContext is match-level state used to modulate importance scores and
// dynamic window sizes.
type MatchContext struct {
	MatchMinute       float64 `json:"matchMinute"`
	TotalMatchMinutes float64 `json:"totalMatchMinutes"`
	ScoreDifferential int     `json:"scoreDifferential"`
}

// Progress returns how far through the match we are, in [0, 1].
func (c MatchContext) Progress() float64 {
	if c.TotalMatchMinutes <= 0 {
		return 0
	}
	p := c.MatchMinute / c.TotalMatchMinutes
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// MatchSummary is a lightweight record for list/show commands.
type MatchSummary struct {
	MatchID         string
	Version         string
	Half            int // 0 = full match, 1 or 2 = half analyses
	VideoRef        string
	WindowCount     int
	RawEventCount   int
	DedupEventCount int
	AnalyzedAt      string
}
