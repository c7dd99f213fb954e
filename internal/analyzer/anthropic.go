package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicSystemPrompt pins the response contract at the API level; the
// per-window instructions ride in the user message.
const anthropicSystemPrompt = `You analyze soccer match video and answer with strict JSON only.
Never include explanations, markdown, or text outside the JSON document.`

// AnthropicClient is the production Client backed by the Anthropic API. The
// video is referenced by a previously uploaded file ID.
type AnthropicClient struct {
	client  anthropic.Client
	modelID string
}

// NewAnthropicClient builds a client for the given model.
func NewAnthropicClient(apiKey, modelID string) *AnthropicClient {
	return &AnthropicClient{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		modelID: modelID,
	}
}

// Analyze sends one window prompt and returns the raw response text.
func (c *AnthropicClient) Analyze(ctx context.Context, videoRef, prompt string) (string, error) {
	userMsg := fmt.Sprintf("VIDEO: %s\n\n%s", videoRef, prompt)

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelID),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: anthropicSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic call: %w", err)
	}

	if msg.StopReason == "refusal" {
		return "", ErrSafetyBlocked
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
