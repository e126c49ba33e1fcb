// Package sqlgen routes a prompt to a generation model and normalizes the
// returned SQL.
package sqlgen

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
)

// Generator calls a model with an assembled prompt.
type Generator struct {
	invoker llm.Invoker
	logger  *zap.Logger
}

// NewGenerator creates a generator.
func NewGenerator(invoker llm.Invoker, logger *zap.Logger) *Generator {
	return &Generator{
		invoker: invoker,
		logger:  logger.Named("sqlgen"),
	}
}

// Generate invokes model at temperature 0 and returns the normalized SQL. The
// SQL is not validated.
func (g *Generator) Generate(ctx context.Context, prompt, model string) (string, error) {
	start := time.Now()

	raw, err := g.invoker.Invoke(ctx, llm.PromptSpec{
		Model:       model,
		Prompt:      prompt,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}

	sql := Normalize(raw)
	g.logger.Info("Generated SQL",
		zap.String("model", model),
		zap.String("sql", logging.SanitizeQuery(sql)),
		zap.Duration("elapsed", time.Since(start)))

	return sql, nil
}
