package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Supported provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Provider       string
	BaseURL        string
	APIKey         string
	EmbeddingModel string
}

// NewInvoker creates the Invoker for cfg.Provider.
func NewInvoker(ctx context.Context, cfg ProviderConfig, logger *zap.Logger) (Invoker, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(&Config{
			Endpoint: defaultString(cfg.BaseURL, "https://api.openai.com/v1"),
			APIKey:   cfg.APIKey,
		}, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.BaseURL, logger)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.EmbeddingModel, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// NewEmbedder creates the Embedder for cfg.Provider. Anthropic has no
// embedding endpoint and is rejected.
func NewEmbedder(ctx context.Context, cfg ProviderConfig, logger *zap.Logger) (Embedder, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(&Config{
			Endpoint:       defaultString(cfg.BaseURL, "https://api.openai.com/v1"),
			APIKey:         cfg.APIKey,
			EmbeddingModel: cfg.EmbeddingModel,
		}, logger)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.EmbeddingModel, logger)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
