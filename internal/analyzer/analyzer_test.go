package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pitchlab/go-match-highlights/internal/config"
	"github.com/pitchlab/go-match-highlights/internal/model"
)

// fakeClient returns canned responses in order, repeating the last one.
type fakeClient struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeClient) Analyze(ctx context.Context, videoRef, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	i := f.calls
	f.calls++
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	return f.responses[i], nil
}

func fastRetry() config.Retry {
	return config.Retry{MaxRetries: 3, InitialDelayMs: 1, MaxDelayMs: 4, TimeoutMs: 1000}
}

func testWindow() model.Window {
	return model.Window{
		WindowID:      "s1_w0",
		AbsoluteStart: 45,
		AbsoluteEnd:   105,
		TargetFps:     3,
		Segment:       model.Segment{SegmentID: "s1", StartSec: 0, EndSec: 120, Type: model.SegmentActivePlay},
	}
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

const goodResponse = `{"events":[
  {"timestamp": 12.5, "type": "shot", "team": "home", "confidence": 0.8,
   "details": {"shotResult": "saved", "isOnTarget": true}},
  {"timestamp": 30.0, "type": "pass", "team": "away", "confidence": 0.6,
   "details": {"passType": "through", "outcome": "complete"}}
]}`

func TestAnalyzeWindow_TimestampLift(t *testing.T) {
	fc := &fakeClient{responses: []string{goodResponse}}
	d := NewDriver(fc, fastRetry(), nil, quietLog())

	events, err := d.AnalyzeWindow(context.Background(), "vid-1", testWindow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].AbsoluteTimestamp != 45+12.5 {
		t.Errorf("absolute timestamp: want 57.5, got %v", events[0].AbsoluteTimestamp)
	}
	if events[0].RelativeTimestamp != 12.5 {
		t.Errorf("relative timestamp: want 12.5, got %v", events[0].RelativeTimestamp)
	}
	if events[0].WindowID != "s1_w0" {
		t.Errorf("window id: want s1_w0, got %s", events[0].WindowID)
	}
	if events[0].Details.IsOnTarget == nil || !*events[0].Details.IsOnTarget {
		t.Error("expected isOnTarget detail to survive parsing")
	}
}

func TestAnalyzeWindow_MarkdownFences(t *testing.T) {
	fc := &fakeClient{responses: []string{"```json\n" + goodResponse + "\n```"}}
	d := NewDriver(fc, fastRetry(), nil, quietLog())

	events, err := d.AnalyzeWindow(context.Background(), "vid-1", testWindow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d", len(events))
	}
}

func TestAnalyzeWindow_RetriesTransientError(t *testing.T) {
	fc := &fakeClient{
		responses: []string{"", goodResponse},
		errs:      []error{errors.New("HTTP 503"), nil},
	}
	d := NewDriver(fc, fastRetry(), nil, quietLog())

	events, err := d.AnalyzeWindow(context.Background(), "vid-1", testWindow())
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if fc.calls != 2 {
		t.Errorf("expected 2 calls, got %d", fc.calls)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d", len(events))
	}
}

// Schema failures are retried too: the model may produce valid output on a
// re-sample of the same prompt.
func TestAnalyzeWindow_RetriesSchemaFailure(t *testing.T) {
	bad := `{"events":[{"timestamp": 5, "type": "dribble", "team": "home", "confidence": 0.8}]}`
	fc := &fakeClient{responses: []string{bad, goodResponse}}
	d := NewDriver(fc, fastRetry(), nil, quietLog())

	if _, err := d.AnalyzeWindow(context.Background(), "vid-1", testWindow()); err != nil {
		t.Fatalf("expected recovery after schema failure, got %v", err)
	}
	if fc.calls != 2 {
		t.Errorf("expected 2 calls, got %d", fc.calls)
	}
}

func TestAnalyzeWindow_BudgetExhausted(t *testing.T) {
	fc := &fakeClient{responses: []string{""}, errs: []error{ErrEmptyResponse}}
	d := NewDriver(fc, fastRetry(), nil, quietLog())

	_, err := d.AnalyzeWindow(context.Background(), "vid-1", testWindow())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected wrapped ErrEmptyResponse, got %v", err)
	}
	if fc.calls != 3 {
		t.Errorf("expected MaxRetries=3 calls, got %d", fc.calls)
	}
}

func TestAnalyzeWindow_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fc := &fakeClient{responses: []string{goodResponse}}
	d := NewDriver(fc, fastRetry(), nil, quietLog())

	if _, err := d.AnalyzeWindow(ctx, "vid-1", testWindow()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestValidation(t *testing.T) {
	w := testWindow()
	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", goodResponse, true},
		{"empty text", "   ", false},
		{"bad json", "{nope", false},
		{"negative timestamp", `{"events":[{"timestamp":-1,"type":"shot","team":"home","confidence":0.5}]}`, false},
		{"bad type", `{"events":[{"timestamp":1,"type":"goal","team":"home","confidence":0.5}]}`, false},
		{"bad team", `{"events":[{"timestamp":1,"type":"shot","team":"neutral","confidence":0.5}]}`, false},
		{"confidence too low", `{"events":[{"timestamp":1,"type":"shot","team":"home","confidence":0.2}]}`, false},
		{"confidence too high", `{"events":[{"timestamp":1,"type":"shot","team":"home","confidence":1.2}]}`, false},
		{"bad zone", `{"events":[{"timestamp":1,"type":"shot","team":"home","zone":"midfield","confidence":0.5}]}`, false},
		{"bad detail enum", `{"events":[{"timestamp":1,"type":"shot","team":"home","confidence":0.5,"details":{"shotResult":"wide"}}]}`, false},
		{"no events", `{"events":[]}`, true},
	}
	for _, c := range cases {
		_, err := ParseResponse(c.body, w)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}

func TestBackoffDelay(t *testing.T) {
	r := config.Retry{InitialDelayMs: 2000, MaxDelayMs: 30000}
	cases := []struct {
		failed int
		want   time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // capped
		{9, 30 * time.Second},
	}
	for _, c := range cases {
		if got := backoffDelay(r, c.failed); got != c.want {
			t.Errorf("backoffDelay(%d): want %v, got %v", c.failed, c.want, got)
		}
	}
}

func TestPromptRender(t *testing.T) {
	p := DefaultPrompt()
	w := testWindow()
	w.Segment.Description = "home attacking buildup"
	w.Segment.Team = model.TeamHome

	out := p.Render(w)
	for _, want := range []string{
		"segment type: active_play",
		"home attacking buildup",
		"45.0s to 105.0s",
		"3 frames per second",
		"relative to the start of this window",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
