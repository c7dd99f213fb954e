// Package windower carves match segments into overlapping analysis windows.
package windower

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pitchlab/go-match-highlights/internal/config"
	"github.com/pitchlab/go-match-highlights/internal/model"
)

// defaultFps is used when a segment type has no configured frame rate.
const defaultFps = 3

// Generator emits analysis windows for an ordered list of segments.
type Generator struct {
	cfg config.Windowing
	log logrus.FieldLogger
}

// New returns a Generator for the given windowing configuration.
func New(cfg config.Windowing, log logrus.FieldLogger) *Generator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{cfg: cfg, log: log}
}

// Generate returns the windows for all segments, in segment order.
//
// Inside a segment, adjacent windows overlap by exactly cfg.OverlapSec
// seconds; the last window may be truncated at the segment end. Segments of
// type stoppage are skipped when cfg.SkipStoppages is set. Segments with no
// positive duration emit nothing.
func (g *Generator) Generate(segments []model.Segment) []model.Window {
	var out []model.Window
	for _, seg := range segments {
		out = append(out, g.windowsForSegment(seg)...)
	}
	return out
}

func (g *Generator) windowsForSegment(seg model.Segment) []model.Window {
	if seg.Type == model.SegmentStoppage && g.cfg.SkipStoppages {
		return nil
	}
	if seg.Duration() <= 0 {
		return nil
	}

	fps := g.cfg.FpsBySegment[seg.Type]
	if fps <= 0 {
		fps = defaultFps
	}

	width := g.cfg.DefaultDurationSec
	overlap := g.cfg.OverlapSec

	// Short segment: one window covering the whole thing.
	if seg.Duration() <= width {
		return []model.Window{{
			WindowID:      windowID(seg, 0),
			AbsoluteStart: seg.StartSec,
			AbsoluteEnd:   seg.EndSec,
			Overlap:       model.Overlap{},
			TargetFps:     fps,
			Segment:       seg,
		}}
	}

	step := width - overlap
	var out []model.Window
	cursor := seg.StartSec
	for i := 0; cursor < seg.EndSec; i++ {
		if i >= g.cfg.MaxWindowsPerSeg {
			g.log.WithFields(logrus.Fields{
				"segment": seg.SegmentID,
				"cap":     g.cfg.MaxWindowsPerSeg,
			}).Warn("window cap reached, truncating segment")
			break
		}

		end := cursor + width
		if end > seg.EndSec {
			end = seg.EndSec
		}

		w := model.Window{
			WindowID:      windowID(seg, i),
			AbsoluteStart: cursor,
			AbsoluteEnd:   end,
			TargetFps:     fps,
			Segment:       seg,
		}
		if i > 0 {
			w.Overlap.Before = overlap
		}
		if end < seg.EndSec {
			w.Overlap.After = overlap
		}
		out = append(out, w)

		cursor += step
	}
	return out
}

func windowID(seg model.Segment, i int) string {
	return fmt.Sprintf("%s_w%d", seg.SegmentID, i)
}
