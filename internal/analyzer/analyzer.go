// Package analyzer drives the external multimodal model: it builds per-window
// prompts, invokes the model with retry and backoff, validates the JSON it
// returns, and lifts window-relative timestamps to absolute match time.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pitchlab/go-match-highlights/internal/config"
	"github.com/pitchlab/go-match-highlights/internal/model"
)

// Failure kinds. Everything short of cancellation is retried up to the
// configured budget: even a schema failure may succeed on a re-sample.
var (
	ErrSafetyBlocked   = errors.New("analyzer: response blocked by safety filter")
	ErrEmptyResponse   = errors.New("analyzer: empty response")
	ErrInvalidResponse = errors.New("analyzer: response failed schema validation")
)

// Client is the opaque multimodal model: analyze(videoRef, prompt) -> JSON.
// Implementations must honor ctx cancellation.
type Client interface {
	Analyze(ctx context.Context, videoRef, prompt string) (string, error)
}

// Driver wraps a Client with the per-window call protocol.
type Driver struct {
	client Client
	retry  config.Retry
	prompt *PromptTemplate
	log    logrus.FieldLogger
}

// NewDriver builds a Driver. A nil prompt selects the process-wide default
// template; tests inject their own.
func NewDriver(client Client, retry config.Retry, prompt *PromptTemplate, log logrus.FieldLogger) *Driver {
	if prompt == nil {
		prompt = DefaultPrompt()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Driver{client: client, retry: retry, prompt: prompt, log: log}
}

// AnalyzeWindow calls the model for one window and returns validated raw
// events with absolute timestamps. Failed attempts (transport errors, safety
// blocks, empty or invalid responses) are retried with exponential backoff
// until the retry budget is exhausted.
func (d *Driver) AnalyzeWindow(ctx context.Context, videoRef string, w model.Window) ([]model.RawEvent, error) {
	prompt := d.prompt.Render(w)

	var lastErr error
	for attempt := 1; attempt <= d.retry.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := d.sleep(ctx, attempt-1); err != nil {
				return nil, err
			}
		}

		events, err := d.callOnce(ctx, videoRef, prompt, w)
		if err == nil {
			return events, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		d.log.WithFields(logrus.Fields{
			"window":  w.WindowID,
			"attempt": attempt,
		}).WithError(err).Warn("window analysis attempt failed")
	}
	return nil, fmt.Errorf("window %s: retries exhausted: %w", w.WindowID, lastErr)
}

func (d *Driver) callOnce(ctx context.Context, videoRef, prompt string, w model.Window) ([]model.RawEvent, error) {
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(d.retry.TimeoutMs)*time.Millisecond)
	defer cancel()

	text, err := d.client.Analyze(callCtx, videoRef, prompt)
	if err != nil {
		return nil, err
	}
	return ParseResponse(text, w)
}

// sleep waits out the backoff for the given completed-attempt count,
// returning early if ctx is canceled.
func (d *Driver) sleep(ctx context.Context, failed int) error {
	delay := backoffDelay(d.retry, failed)
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoffDelay returns the exponential backoff after `failed` failed
// attempts, capped at MaxDelayMs.
func backoffDelay(r config.Retry, failed int) time.Duration {
	ms := r.InitialDelayMs
	for i := 1; i < failed; i++ {
		ms *= 2
		if ms >= r.MaxDelayMs {
			ms = r.MaxDelayMs
			break
		}
	}
	if ms > r.MaxDelayMs {
		ms = r.MaxDelayMs
	}
	return time.Duration(ms) * time.Millisecond
}
