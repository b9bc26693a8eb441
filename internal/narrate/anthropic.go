package narrate

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/combat"
)

const systemPrompt = "You are the narrator of a tabletop fantasy battle. " +
	"You receive the mechanical facts of one combat event and describe it " +
	"in one or two vivid sentences of second-person prose. Never invent " +
	"outcomes, numbers, or participants beyond what you are given."

// AnthropicNarrator renders events through the Anthropic Messages API.
type AnthropicNarrator struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicNarrator creates a narrator for the given model. The API key
// comes from apiKey, or from the ANTHROPIC_API_KEY environment variable when
// apiKey is empty.
func NewAnthropicNarrator(apiKey, model string, maxTokens int64) *AnthropicNarrator {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &AnthropicNarrator{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
	}
}

// Narrate implements Narrator.
func (n *AnthropicNarrator) Narrate(ctx context.Context, event combat.Event) (string, error) {
	msg, err := n.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     n.model,
		MaxTokens: n.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(promptFor(event))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("narrate: messages API: %w", err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("narrate: model returned no text content")
}
