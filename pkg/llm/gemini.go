package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiEmbeddingModel = "gemini-embedding-001"

// GeminiClient invokes Gemini models and embeddings through the GenAI SDK.
type GeminiClient struct {
	client         *genai.Client
	embeddingModel string
	logger         *zap.Logger
}

// NewGeminiClient creates a GenAI client for the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey, embeddingModel string, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if embeddingModel == "" {
		embeddingModel = defaultGeminiEmbeddingModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client:         client,
		embeddingModel: embeddingModel,
		logger:         logger.Named("llm.gemini"),
	}, nil
}

// Invoke generates content for a single-turn prompt.
func (c *GeminiClient) Invoke(ctx context.Context, spec PromptSpec) (string, error) {
	if spec.Model == "" {
		return "", fmt.Errorf("model is required")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(spec.Temperature)),
	}
	if spec.System != "" {
		config.SystemInstruction = genai.NewContentFromText(spec.System, genai.RoleUser)
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, spec.Model, genai.Text(spec.Prompt), config)
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.String("model", spec.Model),
			zap.String("request_id", RequestIDFrom(ctx)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", withModel(ClassifyError(err), spec.Model, "gemini")
	}

	c.logger.Info("LLM request completed",
		zap.String("model", spec.Model),
		zap.String("request_id", RequestIDFrom(ctx)),
		zap.Duration("elapsed", time.Since(start)))

	return result.Text(), nil
}

// Provider implements Invoker.
func (c *GeminiClient) Provider() string {
	return ProviderGemini
}

// CreateEmbedding generates an embedding for a single text.
func (c *GeminiClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	embeddings, err := c.CreateEmbeddings(ctx, []string{input})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

// CreateEmbeddings generates embeddings for multiple texts in one request.
func (c *GeminiClient) CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(inputs))
	for i, text := range inputs {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", ClassifyError(err))
	}
	if len(result.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(result.Embeddings))
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

// GetModel returns the embedding model name.
func (c *GeminiClient) GetModel() string {
	return c.embeddingModel
}
