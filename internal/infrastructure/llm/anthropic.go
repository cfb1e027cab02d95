package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"NewsBrief/internal/config"
	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

const defaultAnthropicMaxTokens = 1024

// AnthropicClient implements ports.Completer backed by the Messages API.
type AnthropicClient struct {
	client       *anthropic.Client
	model        string
	systemPrompt string
	temperature  float64
	maxTokens    int64
}

var _ ports.Completer = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration with SDK retries disabled.
func NewAnthropicClient(cfg config.LLMConfig) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client:       &client,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		maxTokens:    maxTokens,
	}
}

// Complete sends the prompt as a single user turn and joins the text blocks of the answer.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (domain.Completion, error) {
	if c == nil || c.client == nil {
		return domain.Completion{}, fmt.Errorf("anthropic client is nil")
	}
	if c.model == "" {
		return domain.Completion{}, fmt.Errorf("anthropic client misconfigured: empty model")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: safePrompt(c.systemPrompt)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(c.temperature)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("anthropic API error: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return domain.Completion{}, fmt.Errorf("no response from anthropic")
	}

	return domain.Completion{
		Text:  strings.TrimSpace(strings.Join(parts, "")),
		Model: string(resp.Model),
		Usage: domain.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}
