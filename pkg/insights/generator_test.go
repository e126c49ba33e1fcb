package insights

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/prompts"
)

func makeRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{fmt.Sprintf("provider-%d", i+1), float64(100 - i)}
	}
	return rows
}

func TestGenerator_Summarize_FullResult(t *testing.T) {
	mock := llm.NewMockInvoker("\n- one\n- two\n- three\n")
	g := NewGenerator(mock, "", zap.NewNop())

	text, template, err := g.Summarize(context.Background(), "top providers", []string{"provider", "total"}, makeRows(3))
	require.NoError(t, err)

	assert.Equal(t, TemplateFullResult, template)
	assert.Equal(t, "- one\n- two\n- three", text)

	call := mock.LastCall()
	assert.Equal(t, DefaultModel, call.Model)
	assert.Equal(t, prompts.InsightSystemMessage, call.System)
	assert.Zero(t, call.Temperature)
	assert.Contains(t, call.Prompt, "provider,total\nprovider-1,100\nprovider-2,99\nprovider-3,98\n")
	assert.Contains(t, call.Prompt, "exactly 3 concise bullet-point insights")
}

func TestGenerator_Summarize_Boundary(t *testing.T) {
	tests := []struct {
		rows int
		want Template
	}{
		{5, TemplateFullResult},
		{6, TemplateFirstRow},
		{12, TemplateFirstRow},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.rows), func(t *testing.T) {
			mock := llm.NewMockInvoker("ok")
			_, template, err := NewGenerator(mock, "gpt-4o-mini", zap.NewNop()).
				Summarize(context.Background(), "q", []string{"provider", "total"}, makeRows(tt.rows))
			require.NoError(t, err)
			assert.Equal(t, tt.want, template)

			prompt := mock.LastCall().Prompt
			if tt.want == TemplateFirstRow {
				assert.Contains(t, prompt, fmt.Sprintf("The query returned %d rows", tt.rows))
				assert.Contains(t, prompt, "provider,total\nprovider-1,100\n\n")
				assert.NotContains(t, prompt, "provider-2")
			} else {
				assert.Contains(t, prompt, fmt.Sprintf("provider-%d", tt.rows))
			}
		})
	}
}

func TestGenerator_Summarize_Error(t *testing.T) {
	mock := &llm.MockInvoker{InvokeFunc: func(ctx context.Context, spec llm.PromptSpec) (string, error) {
		return "", errors.New("rate limit")
	}}

	_, _, err := NewGenerator(mock, "", zap.NewNop()).Summarize(context.Background(), "q", []string{"a"}, makeRows(1))
	assert.Error(t, err)
}
