package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

const anthropicMaxTokens = 2048

// AnthropicClient invokes Claude models through the Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	logger *zap.Logger
}

// NewAnthropicClient creates a Messages API client. baseURL is optional.
func NewAnthropicClient(apiKey, baseURL string, logger *zap.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(baseURL, "/")))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(apiKey, opts...),
		logger: logger.Named("llm.anthropic"),
	}, nil
}

// Invoke sends a single user message and returns the first text block.
func (c *AnthropicClient) Invoke(ctx context.Context, spec PromptSpec) (string, error) {
	if spec.Model == "" {
		return "", fmt.Errorf("model is required")
	}

	temperature := float32(spec.Temperature)
	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(spec.Model),
		MaxTokens:   anthropicMaxTokens,
		System:      spec.System,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(spec.Prompt),
		},
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.String("model", spec.Model),
			zap.String("request_id", RequestIDFrom(ctx)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", withModel(ClassifyError(err), spec.Model, "anthropic")
	}

	c.logger.Info("LLM request completed",
		zap.String("model", spec.Model),
		zap.String("request_id", RequestIDFrom(ctx)),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			return *block.Text, nil
		}
	}
	return "", NewErrorWithContext(ErrorTypeUnknown, "no text content in response", false, nil, spec.Model, "anthropic", 0)
}

// Provider implements Invoker.
func (c *AnthropicClient) Provider() string {
	return ProviderAnthropic
}
