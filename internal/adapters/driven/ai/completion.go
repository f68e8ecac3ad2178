package ai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
)

// CompletionConfig configures a CompletionService.
type CompletionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// CompletionService wraps the OpenAI chat completions endpoint.
type CompletionService struct {
	client       openai.Client
	defaultModel string
}

// NewCompletionService constructs a CompletionService from cfg.
func NewCompletionService(cfg CompletionConfig) (*CompletionService, error) {
	if cfg.Model == "" {
		return nil, domain.ErrInvalidSettings
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &CompletionService{
		client:       openai.NewClient(opts...),
		defaultModel: cfg.Model,
	}, nil
}

func (c *CompletionService) Complete(ctx context.Context, messages []driven.ChatMessage, opts driven.CompletionOptions) (string, int, error) {
	model := opts.Model
	if model == "" {
		model = c.defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toSDKMessages(messages),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", 0, err
	}
	if len(resp.Choices) == 0 {
		return "", int(resp.Usage.TotalTokens), nil
	}
	return resp.Choices[0].Message.Content, int(resp.Usage.TotalTokens), nil
}

func toSDKMessages(messages []driven.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func (c *CompletionService) Model() string { return c.defaultModel }

func (c *CompletionService) Ping(ctx context.Context) error {
	_, _, err := c.Complete(ctx, []driven.ChatMessage{{Role: "user", Content: "ping"}}, driven.CompletionOptions{MaxTokens: 1})
	return err
}

func (c *CompletionService) Close() error { return nil }
