package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
)

const defaultAnthropicModel = "claude-sonnet-4-6"

// AnthropicOracle answers prompts with Anthropic Claude or a compatible
// provider behind the same Messages API.
type AnthropicOracle struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicOracle(apiKey, model, baseURL string) *AnthropicOracle {
	if model == "" {
		model = defaultAnthropicModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicOracle{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (o *AnthropicOracle) Provider() string { return "anthropic" }

// Complete sends one user turn and concatenates the text blocks of the reply.
func (o *AnthropicOracle) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.F(anthropic.Model(o.model)),
		MaxTokens:   anthropic.F(req.MaxTokens),
		Temperature: anthropic.F(req.Temperature),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		}),
	}
	if req.System != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(req.System),
		})
	}

	resp, err := o.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: %w", ErrOracleUnavailable, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if b, ok := block.AsUnion().(anthropic.TextBlock); ok {
			sb.WriteString(b.Text)
		}
	}

	log.Debug().
		Str("model", o.model).
		Str("stop_reason", string(resp.StopReason)).
		Int64("output_tokens", resp.Usage.OutputTokens).
		Msg("oracle completion")

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
