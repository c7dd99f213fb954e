// Package detector runs windowed event detection: it carves segments into
// windows, fans the windows out to the analyzer in bounded-parallel batches,
// and aggregates the raw events.
package detector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pitchlab/go-match-highlights/internal/analyzer"
	"github.com/pitchlab/go-match-highlights/internal/config"
	"github.com/pitchlab/go-match-highlights/internal/model"
	"github.com/pitchlab/go-match-highlights/internal/windower"
)

// Request describes one windowed-detection run.
type Request struct {
	MatchID  string
	Version  string
	VideoRef string // cached video handle or file URI
	Segments []model.Segment
}

// Result aggregates a detection run.
type Result struct {
	MatchID       string
	RunID         string
	WindowCount   int
	RawEventCount int
	EventsByType  map[model.EventType]int
	RawEvents     []model.RawEvent
	Skipped       bool
	SkipReason    string
}

// Detector owns one detection pipeline.
type Detector struct {
	driver      *analyzer.Driver
	gen         *windower.Generator
	parallelism int
	log         logrus.FieldLogger
}

// New wires a Detector from an analyzer driver and the pipeline config.
func New(driver *analyzer.Driver, cfg config.Config, log logrus.FieldLogger) *Detector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	par := cfg.Windowing.Parallelism
	if par <= 0 {
		par = 1
	}
	return &Detector{
		driver:      driver,
		gen:         windower.New(cfg.Windowing, log),
		parallelism: par,
		log:         log,
	}
}

// DetectEventsWindowed runs the full windowed-detection step for one match.
//
// Windows are processed in batches of the configured parallelism; batches run
// sequentially and each batch joins all its windows before the next starts.
// A window failure does not cancel its siblings, but any window error fails
// the batch and terminates the step. A canceled ctx stops before the next
// batch; in-flight calls are bounded by the analyzer's own call timeout.
func (d *Detector) DetectEventsWindowed(ctx context.Context, req Request) (Result, error) {
	res := Result{
		MatchID:      req.MatchID,
		RunID:        uuid.NewString(),
		EventsByType: make(map[model.EventType]int),
	}

	if req.VideoRef == "" {
		res.Skipped = true
		res.SkipReason = "no valid video reference: neither cached video nor file URI"
		return res, nil
	}
	if len(req.Segments) == 0 {
		// Nothing upstream to analyze; an empty result, not an error.
		return res, nil
	}

	windows := d.gen.Generate(req.Segments)
	res.WindowCount = len(windows)
	if len(windows) == 0 {
		return res, nil
	}

	d.log.WithFields(logrus.Fields{
		"match":   req.MatchID,
		"windows": len(windows),
		"batch":   d.parallelism,
	}).Info("starting windowed detection")

	batchCount := (len(windows) + d.parallelism - 1) / d.parallelism
	for b := 0; b*d.parallelism < len(windows); b++ {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("match %s: windowed detection canceled: %w", req.MatchID, err)
		}

		lo := b * d.parallelism
		hi := lo + d.parallelism
		if hi > len(windows) {
			hi = len(windows)
		}
		batch := windows[lo:hi]

		events, err := d.runBatch(ctx, req.VideoRef, batch)
		if err != nil {
			return res, fmt.Errorf("match %s: windowed detection: batch %d/%d: %w",
				req.MatchID, b+1, batchCount, err)
		}
		res.RawEvents = append(res.RawEvents, events...)

		d.log.WithFields(logrus.Fields{
			"match":  req.MatchID,
			"batch":  b + 1,
			"of":     batchCount,
			"events": len(events),
		}).Info("batch complete")
	}

	res.RawEventCount = len(res.RawEvents)
	for _, e := range res.RawEvents {
		res.EventsByType[e.Type]++
	}
	return res, nil
}

// runBatch analyzes up to parallelism windows concurrently and joins them
// all. Sibling windows keep running when one fails; the first error is
// reported after the join.
func (d *Detector) runBatch(ctx context.Context, videoRef string, batch []model.Window) ([]model.RawEvent, error) {
	results := make([][]model.RawEvent, len(batch))

	var g errgroup.Group
	for i, w := range batch {
		g.Go(func() error {
			events, err := d.driver.AnalyzeWindow(ctx, videoRef, w)
			if err != nil {
				return err
			}
			results[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.RawEvent
	for _, events := range results {
		out = append(out, events...)
	}
	return out, nil
}
