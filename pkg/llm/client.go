package llm

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultOpenAIEmbeddingModel = "text-embedding-3-small"

// OpenAIClient provides access to OpenAI-compatible chat and embedding endpoints.
type OpenAIClient struct {
	client         *openai.Client
	endpoint       string
	embeddingModel string
	logger         *zap.Logger
}

// Config holds configuration for creating an OpenAI-compatible client.
type Config struct {
	Endpoint       string // Base URL, e.g., "https://api.openai.com/v1"
	APIKey         string // Optional for local endpoints
	EmbeddingModel string // Used by CreateEmbedding(s)
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = defaultOpenAIEmbeddingModel
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(clientConfig),
		endpoint:       cfg.Endpoint,
		embeddingModel: embeddingModel,
		logger:         logger.Named("llm.openai"),
	}, nil
}

// Invoke sends a system+user chat completion and returns the first choice.
func (c *OpenAIClient) Invoke(ctx context.Context, spec PromptSpec) (string, error) {
	if spec.Model == "" {
		return "", fmt.Errorf("model is required")
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if spec.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: spec.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: spec.Prompt})

	c.logger.Debug("LLM request",
		zap.String("model", spec.Model),
		zap.String("request_id", RequestIDFrom(ctx)),
		zap.Int("prompt_len", len(spec.Prompt)),
		zap.Float64("temperature", spec.Temperature))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       spec.Model,
		Messages:    messages,
		Temperature: chatTemperature(spec.Model, spec.Temperature),
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.String("model", spec.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", withModel(ClassifyError(err), spec.Model, c.endpoint)
	}

	if len(resp.Choices) == 0 {
		return "", NewErrorWithContext(ErrorTypeUnknown, "no choices in response", false, nil, spec.Model, c.endpoint, 0)
	}

	c.logger.Info("LLM request completed",
		zap.String("model", spec.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// Provider implements Invoker.
func (c *OpenAIClient) Provider() string {
	return ProviderOpenAI
}

// CreateEmbedding generates an embedding vector for the input text.
func (c *OpenAIClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	embeddings, err := c.CreateEmbeddings(ctx, []string{input})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}
	return embeddings[0], nil
}

// CreateEmbeddings generates embeddings for multiple inputs.
func (c *OpenAIClient) CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: inputs,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", ClassifyError(err))
	}

	embeddings := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(inputs) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		embeddings[d.Index] = d.Embedding
	}

	return embeddings, nil
}

// GetModel returns the embedding model name.
func (c *OpenAIClient) GetModel() string {
	return c.embeddingModel
}

// chatTemperature maps a requested temperature onto the request field.
// go-openai omits a zero temperature from the payload, which the API treats as
// 1.0, so zero is sent as the smallest positive float instead. Reasoning models
// only accept the default and always get the field omitted.
func chatTemperature(model string, temperature float64) float32 {
	if isReasoningModel(model) {
		return 0
	}
	if temperature == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(temperature)
}

func isReasoningModel(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range []string{"o1", "o3", "o4"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}
