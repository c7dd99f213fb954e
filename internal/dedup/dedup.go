// Package dedup collapses raw events that overlapping windows picked up from
// the same physical occurrence into single representative events.
package dedup

import (
	"sort"
	"strings"

	"github.com/pitchlab/go-match-highlights/internal/config"
	"github.com/pitchlab/go-match-highlights/internal/model"
)

// indexed keeps an event's position in the caller's slice so merged window
// ids come out in pre-sort order.
type indexed struct {
	model.RawEvent
	pos int
}

// Deduplicate clusters temporally adjacent same-kind events and merges each
// cluster into one event. Clustering chains off the LAST event appended to
// the current cluster, so a long run of near-adjacent detections collapses
// transitively. The operation is idempotent: rerunning it on its own output
// (converted back to raw events) yields the same clusters.
func Deduplicate(events []model.RawEvent, cfg config.Dedup) []model.DeduplicatedEvent {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]indexed, len(events))
	for i, e := range events {
		sorted[i] = indexed{RawEvent: e, pos: i}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AbsoluteTimestamp < sorted[j].AbsoluteTimestamp
	})

	out := make([]model.DeduplicatedEvent, 0, len(events))
	cluster := []indexed{sorted[0]}
	for _, e := range sorted[1:] {
		last := cluster[len(cluster)-1]
		sameKind := e.Type == last.Type && e.Team == last.Team
		near := e.AbsoluteTimestamp-last.AbsoluteTimestamp <= cfg.TimeThreshold
		if sameKind && near {
			cluster = append(cluster, e)
			continue
		}
		out = append(out, mergeCluster(cluster, cfg))
		cluster = []indexed{e}
	}
	out = append(out, mergeCluster(cluster, cfg))
	return out
}

func mergeCluster(cluster []indexed, cfg config.Dedup) model.DeduplicatedEvent {
	if len(cluster) == 1 {
		e := cluster[0]
		return model.DeduplicatedEvent{
			AbsoluteTimestamp:  e.AbsoluteTimestamp,
			Type:               e.Type,
			Team:               e.Team,
			Player:             e.Player,
			Zone:               e.Zone,
			Details:            e.Details,
			Confidence:         e.Confidence,
			AdjustedConfidence: clamp01(e.Confidence),
			VisualEvidence:     e.VisualEvidence,
			MergedFromWindows:  []string{e.WindowID},
		}
	}

	// Base event: highest confidence, earliest timestamp on ties.
	base := cluster[0]
	for _, e := range cluster[1:] {
		if e.Confidence > base.Confidence ||
			(e.Confidence == base.Confidence && e.AbsoluteTimestamp < base.AbsoluteTimestamp) {
			base = e
		}
	}

	// Confidence-weighted timestamp.
	var num, den float64
	for _, e := range cluster {
		num += e.AbsoluteTimestamp * e.Confidence
		den += e.Confidence
	}
	ts := base.AbsoluteTimestamp
	if den > 0 {
		ts = num / den
	}

	// Details: walk in descending confidence; each field keeps the first
	// present value, never overwritten.
	byConf := make([]indexed, len(cluster))
	copy(byConf, cluster)
	sort.SliceStable(byConf, func(i, j int) bool {
		return byConf[i].Confidence > byConf[j].Confidence
	})
	var details model.EventDetails
	for _, e := range byConf {
		details = fillMissing(details, e.Details)
	}

	// Visual evidence: all non-empty strings, cluster (time) order.
	var evidence []string
	for _, e := range cluster {
		if e.VisualEvidence != "" {
			evidence = append(evidence, e.VisualEvidence)
		}
	}

	// Window ids in the caller's original order.
	byPos := make([]indexed, len(cluster))
	copy(byPos, cluster)
	sort.Slice(byPos, func(i, j int) bool { return byPos[i].pos < byPos[j].pos })
	windows := make([]string, len(byPos))
	for i, e := range byPos {
		windows[i] = e.WindowID
	}

	boost := 1 + cfg.ConfidenceBoostPerDetection*float64(len(cluster)-1)
	return model.DeduplicatedEvent{
		AbsoluteTimestamp:  ts,
		Type:               base.Type,
		Team:               base.Team,
		Player:             base.Player,
		Zone:               base.Zone,
		Details:            details,
		Confidence:         base.Confidence,
		AdjustedConfidence: clamp01(base.Confidence * boost),
		VisualEvidence:     strings.Join(evidence, "; "),
		MergedFromWindows:  windows,
	}
}

// fillMissing copies src fields into dst for every field dst lacks.
func fillMissing(dst, src model.EventDetails) model.EventDetails {
	if dst.PassType == "" {
		dst.PassType = src.PassType
	}
	if dst.Outcome == "" {
		dst.Outcome = src.Outcome
	}
	if dst.TargetPlayer == "" {
		dst.TargetPlayer = src.TargetPlayer
	}
	if dst.Distance == nil {
		dst.Distance = src.Distance
	}
	if dst.EndReason == "" {
		dst.EndReason = src.EndReason
	}
	if dst.TurnoverType == "" {
		dst.TurnoverType = src.TurnoverType
	}
	if dst.ShotResult == "" {
		dst.ShotResult = src.ShotResult
	}
	if dst.ShotType == "" {
		dst.ShotType = src.ShotType
	}
	if dst.SetPieceType == "" {
		dst.SetPieceType = src.SetPieceType
	}
	if dst.IsOnTarget == nil {
		dst.IsOnTarget = src.IsOnTarget
	}
	if dst.WonTackle == nil {
		dst.WonTackle = src.WonTackle
	}
	return dst
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TypeStats is the per-kind slice of Stats.
type TypeStats struct {
	Raw            int `json:"raw"`
	Deduplicated   int `json:"deduplicated"`
	MergedClusters int `json:"mergedCount"`
}

// Stats summarizes one deduplication pass for diagnostics.
type Stats struct {
	TotalRawEvents          int                           `json:"totalRawEvents"`
	TotalDeduplicatedEvents int                           `json:"totalDeduplicatedEvents"`
	MergedCount             int                           `json:"mergedCount"`
	UniqueCount             int                           `json:"uniqueCount"`
	AverageClusterSize      float64                       `json:"averageClusterSize"`
	ByType                  map[model.EventType]TypeStats `json:"byType"`
}

// ComputeStats derives diagnostics from a raw input and its deduplicated
// output.
func ComputeStats(raw []model.RawEvent, deduped []model.DeduplicatedEvent) Stats {
	s := Stats{
		TotalRawEvents:          len(raw),
		TotalDeduplicatedEvents: len(deduped),
		ByType:                  make(map[model.EventType]TypeStats),
	}
	for _, e := range raw {
		ts := s.ByType[e.Type]
		ts.Raw++
		s.ByType[e.Type] = ts
	}
	for _, e := range deduped {
		ts := s.ByType[e.Type]
		ts.Deduplicated++
		if len(e.MergedFromWindows) > 1 {
			ts.MergedClusters++
			s.MergedCount++
		} else {
			s.UniqueCount++
		}
		s.ByType[e.Type] = ts
	}
	if len(deduped) > 0 {
		s.AverageClusterSize = float64(len(raw)) / float64(len(deduped))
	}
	return s
}
