package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog/log"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIOracle answers prompts through the Chat Completions API.
type OpenAIOracle struct {
	client openai.Client
	model  string
}

func NewOpenAIOracle(apiKey, model, baseURL string) *OpenAIOracle {
	if model == "" {
		model = defaultOpenAIModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIOracle{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (o *OpenAIOracle) Provider() string { return "openai" }

func (o *OpenAIOracle) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    messages,
		MaxTokens:   openai.Int(req.MaxTokens),
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", ErrOracleUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	log.Debug().
		Str("model", o.model).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("oracle completion")

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
