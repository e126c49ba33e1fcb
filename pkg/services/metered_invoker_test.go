package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
)

func TestMeteredInvoker_PassesThrough(t *testing.T) {
	mock := llm.NewMockInvoker("SELECT 1")
	mock.ProviderName = "openai"
	m := NewMeteredInvoker(mock)

	out, err := m.Invoke(context.Background(), llm.PromptSpec{Model: "gpt-4o", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", out)
	assert.Equal(t, "openai", m.Provider())
	assert.Equal(t, "gpt-4o", mock.LastCall().Model)
}

func TestMeteredInvoker_ReturnsError(t *testing.T) {
	rateLimited := llm.NewError(llm.ErrorTypeRateLimit, "slow down", true, nil)
	m := NewMeteredInvoker(&llm.MockInvoker{InvokeFunc: func(ctx context.Context, spec llm.PromptSpec) (string, error) {
		return "", rateLimited
	}})

	_, err := m.Invoke(context.Background(), llm.PromptSpec{Model: "gpt-4o"})
	assert.ErrorIs(t, err, rateLimited)
}
