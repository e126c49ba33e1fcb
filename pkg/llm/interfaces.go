// Package llm provides the model invocation and embedding capabilities used by
// the translation pipeline.
package llm

import (
	"context"
)

// PromptSpec describes a single-turn model call.
type PromptSpec struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
}

// Invoker is the one capability every pipeline stage uses to call a model.
// Parsing and normalization are layered on top by the callers.
type Invoker interface {
	// Invoke sends the prompt and returns the raw response text.
	Invoke(ctx context.Context, spec PromptSpec) (string, error)

	// Provider returns the provider name, e.g. "openai".
	Provider() string
}

// Embedder generates embedding vectors for retrieval.
type Embedder interface {
	// CreateEmbedding generates an embedding vector for the input text.
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)

	// CreateEmbeddings generates embeddings for multiple inputs, in input order.
	CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error)

	// GetModel returns the embedding model name.
	GetModel() string
}

// Ensure providers implement the interfaces at compile time.
var (
	_ Invoker  = (*OpenAIClient)(nil)
	_ Embedder = (*OpenAIClient)(nil)
	_ Invoker  = (*AnthropicClient)(nil)
	_ Invoker  = (*GeminiClient)(nil)
	_ Embedder = (*GeminiClient)(nil)
)
