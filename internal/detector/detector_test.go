package detector

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pitchlab/go-match-highlights/internal/analyzer"
	"github.com/pitchlab/go-match-highlights/internal/config"
	"github.com/pitchlab/go-match-highlights/internal/model"
)

// clientFunc adapts a function to analyzer.Client.
type clientFunc func(ctx context.Context, videoRef, prompt string) (string, error)

func (f clientFunc) Analyze(ctx context.Context, videoRef, prompt string) (string, error) {
	return f(ctx, videoRef, prompt)
}

const oneShot = `{"events":[{"timestamp":1.0,"type":"shot","team":"home","confidence":0.5}]}`

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newDetector(t *testing.T, client analyzer.Client) *Detector {
	t.Helper()
	cfg := config.Default()
	cfg.Retry = config.Retry{MaxRetries: 1, InitialDelayMs: 1, MaxDelayMs: 1, TimeoutMs: 1000}
	driver := analyzer.NewDriver(client, cfg.Retry, nil, quietLog())
	return New(driver, cfg, quietLog())
}

func segments(n int) []model.Segment {
	out := make([]model.Segment, n)
	for i := range out {
		out[i] = model.Segment{
			SegmentID: string(rune('a' + i)),
			StartSec:  float64(i * 30),
			EndSec:    float64(i*30 + 30),
			Type:      model.SegmentActivePlay,
		}
	}
	return out
}

func TestDetect_AggregatesEvents(t *testing.T) {
	d := newDetector(t, clientFunc(func(ctx context.Context, videoRef, prompt string) (string, error) {
		return oneShot, nil
	}))

	res, err := d.DetectEventsWindowed(context.Background(), Request{
		MatchID:  "m1",
		VideoRef: "vid-1",
		Segments: segments(7),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.WindowCount != 7 {
		t.Errorf("window count: want 7, got %d", res.WindowCount)
	}
	if res.RawEventCount != 7 {
		t.Errorf("raw event count: want 7, got %d", res.RawEventCount)
	}
	if res.EventsByType[model.EventShot] != 7 {
		t.Errorf("shot count: want 7, got %d", res.EventsByType[model.EventShot])
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
}

func TestDetect_ParallelismBound(t *testing.T) {
	var inFlight, peak int64
	var mu sync.Mutex

	d := newDetector(t, clientFunc(func(ctx context.Context, videoRef, prompt string) (string, error) {
		n := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return oneShot, nil
	}))

	_, err := d.DetectEventsWindowed(context.Background(), Request{
		MatchID:  "m1",
		VideoRef: "vid-1",
		Segments: segments(12),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak > 5 {
		t.Errorf("observed %d concurrent calls, limit is 5", peak)
	}
}

func TestDetect_NoVideoRefSkips(t *testing.T) {
	d := newDetector(t, clientFunc(func(ctx context.Context, videoRef, prompt string) (string, error) {
		t.Error("analyzer should not be called without a video reference")
		return "", nil
	}))

	res, err := d.DetectEventsWindowed(context.Background(), Request{MatchID: "m1", Segments: segments(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Skipped {
		t.Error("expected skipped result")
	}
	if res.SkipReason == "" {
		t.Error("expected a skip reason")
	}
}

func TestDetect_EmptySegments(t *testing.T) {
	d := newDetector(t, clientFunc(func(ctx context.Context, videoRef, prompt string) (string, error) {
		return oneShot, nil
	}))

	res, err := d.DetectEventsWindowed(context.Background(), Request{MatchID: "m1", VideoRef: "vid-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped || res.WindowCount != 0 || res.RawEventCount != 0 {
		t.Errorf("expected empty non-skipped result, got %+v", res)
	}
}

// A failing window fails its batch, but its batch siblings still complete.
func TestDetect_BatchFailureDoesNotCancelSiblings(t *testing.T) {
	var calls int64
	d := newDetector(t, clientFunc(func(ctx context.Context, videoRef, prompt string) (string, error) {
		n := atomic.AddInt64(&calls, 1)
		if n == 1 {
			return "", errors.New("HTTP 500")
		}
		return oneShot, nil
	}))

	_, err := d.DetectEventsWindowed(context.Background(), Request{
		MatchID:  "m1",
		VideoRef: "vid-1",
		Segments: segments(5), // exactly one batch
	})
	if err == nil {
		t.Fatal("expected batch failure")
	}
	if !strings.Contains(err.Error(), "m1") {
		t.Errorf("error should carry match id: %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 5 {
		t.Errorf("expected all 5 siblings to run, got %d calls", got)
	}
}

func TestDetect_CancelStopsNextBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int64
	d := newDetector(t, clientFunc(func(c context.Context, videoRef, prompt string) (string, error) {
		atomic.AddInt64(&calls, 1)
		cancel() // cancel while first batch is in flight
		return oneShot, nil
	}))

	_, err := d.DetectEventsWindowed(ctx, Request{
		MatchID:  "m1",
		VideoRef: "vid-1",
		Segments: segments(10), // two batches
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := atomic.LoadInt64(&calls); got > 5 {
		t.Errorf("second batch should not start after cancel, got %d calls", got)
	}
}
