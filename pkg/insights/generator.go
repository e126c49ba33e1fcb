// Package insights narrates an executed result set with one model call.
package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/prompts"
)

// DefaultModel is the insight model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// Generator produces narrative insights for query results.
type Generator struct {
	invoker llm.Invoker
	model   string
	logger  *zap.Logger
}

// NewGenerator creates an insight generator.
func NewGenerator(invoker llm.Invoker, model string, logger *zap.Logger) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{
		invoker: invoker,
		model:   model,
		logger:  logger.Named("insights"),
	}
}

// BuildPrompt renders the insight prompt for the template chosen by the row
// count.
func BuildPrompt(question string, columns []string, rows [][]any) (string, Template, error) {
	template := SelectTemplate(len(rows))

	switch template {
	case TemplateFullResult:
		csv, err := RenderCSV(columns, rows)
		if err != nil {
			return "", template, err
		}
		return prompts.BuildFullResultInsightPrompt(question, csv), template, nil
	default:
		csv, err := RenderCSV(columns, rows[:1])
		if err != nil {
			return "", template, err
		}
		return prompts.BuildFirstRowInsightPrompt(question, csv, len(rows)), template, nil
	}
}

// Summarize returns the trimmed model narrative for the result set.
func (g *Generator) Summarize(ctx context.Context, question string, columns []string, rows [][]any) (string, Template, error) {
	prompt, template, err := BuildPrompt(question, columns, rows)
	if err != nil {
		return "", template, fmt.Errorf("render result set: %w", err)
	}

	start := time.Now()
	raw, err := g.invoker.Invoke(ctx, llm.PromptSpec{
		Model:       g.model,
		System:      prompts.InsightSystemMessage,
		Prompt:      prompt,
		Temperature: 0,
	})
	if err != nil {
		return "", template, err
	}

	g.logger.Debug("Generated insights",
		zap.String("template", template.String()),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)))

	return strings.TrimSpace(raw), template, nil
}
