package analyzer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pitchlab/go-match-highlights/internal/model"
)

// basePrompt is the instruction block shared by every window call. The window
// context is appended per call by Render.
const basePrompt = `You are a soccer tactical analyst reviewing match footage.
Identify every tactical event visible in this video window.

Report ONLY events you can actually see. For each event emit:
- timestamp: seconds RELATIVE TO THE START OF THIS WINDOW (not the match clock)
- type: one of pass, carry, turnover, shot, setPiece
- team: home or away
- player: shirt number or description if identifiable (optional)
- zone: defensive_third, middle_third, or attacking_third (optional)
- details: only the fields that apply
    passType (short|medium|long|through|cross), outcome (complete|incomplete|intercepted),
    targetPlayer, distance, endReason (pass|shot|dispossessed|stopped),
    turnoverType (tackle|interception|bad_touch|out_of_bounds|other),
    shotResult (goal|saved|blocked|missed|post),
    shotType (power|placed|header|volley|long_range|chip),
    setPieceType (corner|free_kick|penalty|throw_in)
- confidence: between 0.3 and 1.0
- visualEvidence: short description of what you saw (optional)

Answer with a single JSON object:
{"metadata": {"videoQuality": "...", "analyzedDurationSec": N}, "events": [...]}
No prose outside the JSON.`

// PromptTemplate renders the per-window analysis prompt. The zero value is
// not usable; obtain one from DefaultPrompt or NewPromptTemplate.
type PromptTemplate struct {
	base string
}

// NewPromptTemplate builds a template around a custom instruction block.
// Tests use this to pin prompts without touching process state.
func NewPromptTemplate(base string) *PromptTemplate {
	return &PromptTemplate{base: base}
}

var (
	defaultPromptOnce sync.Once
	defaultPrompt     *PromptTemplate
)

// DefaultPrompt returns the process-wide immutable template, built lazily on
// first use.
func DefaultPrompt() *PromptTemplate {
	defaultPromptOnce.Do(func() {
		defaultPrompt = NewPromptTemplate(basePrompt)
	})
	return defaultPrompt
}

// Render appends the window context to the instruction block.
func (p *PromptTemplate) Render(w model.Window) string {
	var b strings.Builder
	b.WriteString(p.base)
	b.WriteString("\n\nWindow context:\n")
	fmt.Fprintf(&b, "- segment type: %s\n", w.Segment.Type)
	if w.Segment.Description != "" {
		fmt.Fprintf(&b, "- segment description: %s\n", w.Segment.Description)
	}
	if w.Segment.Team != "" && w.Segment.Team != model.TeamUnknown {
		fmt.Fprintf(&b, "- primary team in possession: %s\n", w.Segment.Team)
	}
	fmt.Fprintf(&b, "- match time range: %.1fs to %.1fs\n", w.AbsoluteStart, w.AbsoluteEnd)
	fmt.Fprintf(&b, "- analyze at %d frames per second\n", w.TargetFps)
	b.WriteString("- report timestamps relative to the start of this window\n")
	return b.String()
}
