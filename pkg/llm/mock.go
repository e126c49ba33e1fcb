package llm

import (
	"context"
	"sync"
)

// MockInvoker is a configurable Invoker for tests. Set InvokeFunc to control
// behavior; every call is recorded in Calls.
type MockInvoker struct {
	// InvokeFunc is called when Invoke is invoked.
	// If nil, returns Response and nil error.
	InvokeFunc func(ctx context.Context, spec PromptSpec) (string, error)

	// Response is returned when InvokeFunc is nil.
	Response string

	// ProviderName is returned by Provider. Defaults to "mock".
	ProviderName string

	mu    sync.Mutex
	Calls []PromptSpec
}

// NewMockInvoker creates a mock that always answers with response.
func NewMockInvoker(response string) *MockInvoker {
	return &MockInvoker{Response: response}
}

// Invoke implements Invoker.
func (m *MockInvoker) Invoke(ctx context.Context, spec PromptSpec) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, spec)
	m.mu.Unlock()

	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, spec)
	}
	return m.Response, nil
}

// Provider implements Invoker.
func (m *MockInvoker) Provider() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// CallCount returns the number of Invoke calls.
func (m *MockInvoker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent PromptSpec, or the zero value.
func (m *MockInvoker) LastCall() PromptSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return PromptSpec{}
	}
	return m.Calls[len(m.Calls)-1]
}

// MockEmbedder is a configurable Embedder for tests.
type MockEmbedder struct {
	// CreateEmbeddingFunc is called by CreateEmbedding and, per input, by
	// CreateEmbeddings. If nil, returns nil and no error.
	CreateEmbeddingFunc func(ctx context.Context, input string) ([]float32, error)

	// Model is returned by GetModel. Defaults to "mock-embedding".
	Model string

	mu                    sync.Mutex
	CreateEmbeddingCalls  int
	CreateEmbeddingsCalls int
}

// CreateEmbedding implements Embedder.
func (m *MockEmbedder) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	m.mu.Lock()
	m.CreateEmbeddingCalls++
	m.mu.Unlock()

	if m.CreateEmbeddingFunc != nil {
		return m.CreateEmbeddingFunc(ctx, input)
	}
	return nil, nil
}

// CreateEmbeddings implements Embedder.
func (m *MockEmbedder) CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	m.mu.Lock()
	m.CreateEmbeddingsCalls++
	m.mu.Unlock()

	out := make([][]float32, len(inputs))
	for i, input := range inputs {
		if m.CreateEmbeddingFunc == nil {
			continue
		}
		v, err := m.CreateEmbeddingFunc(ctx, input)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// GetModel implements Embedder.
func (m *MockEmbedder) GetModel() string {
	if m.Model == "" {
		return "mock-embedding"
	}
	return m.Model
}
